package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smart-trolley-backend/models"
)

// CartRepository defines the interface for the active cart store.
type CartRepository interface {
	GetCart(ctx context.Context) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context) error
}

// RedisCartRepository stores the single active cart as one JSON value.
// No TTL: the cart survives restarts; abandonment is a heartbeat concern.
type RedisCartRepository struct {
	client    *redis.Client
	trolleyID string
}

// NewRedisCartRepository creates a new RedisCartRepository.
func NewRedisCartRepository(client *redis.Client, trolleyID string) CartRepository {
	return &RedisCartRepository{client: client, trolleyID: trolleyID}
}

func (r *RedisCartRepository) key() string {
	return fmt.Sprintf("cart:trolley:%s", r.trolleyID)
}

// GetCart returns the stored cart, or nil when no cart exists yet.
func (r *RedisCartRepository) GetCart(ctx context.Context) (*models.Cart, error) {
	data, err := r.client.Get(ctx, r.key()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveCart persists the cart, stamping UpdatedAt.
func (r *RedisCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	cart.TrolleyID = r.trolleyID
	cart.UpdatedAt = time.Now()

	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(), data, 0).Err()
}

// DeleteCart removes the cart entirely.
func (r *RedisCartRepository) DeleteCart(ctx context.Context) error {
	return r.client.Del(ctx, r.key()).Err()
}
