package services_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/gorm"

	"smart-trolley-backend/models"
)

// --- In-memory ProductRepository ---

type mockProductRepo struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func newMockProductRepo(products ...models.Product) *mockProductRepo {
	repo := &mockProductRepo{products: map[string]*models.Product{}}
	for i := range products {
		p := products[i]
		repo.products[p.ID] = &p
	}
	return repo
}

func (m *mockProductRepo) FindByID(_ context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockProductRepo) FindAll(_ context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Product
	for _, p := range m.products {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockProductRepo) Create(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[product.ID]; exists {
		return &duplicateKeyError{}
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepo) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["stock"]; ok {
		p.Stock = v.(int)
	}
	if v, ok := fields["price"]; ok {
		p.Price = v.(float64)
	}
	if v, ok := fields["discount"]; ok {
		p.Discount = v.(float64)
	}
	if v, ok := fields["name"]; ok {
		p.Name = v.(string)
	}
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) AdjustStock(_ context.Context, id string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	p.Stock += delta
	if p.Stock < 0 {
		p.Stock = 0
	}
	return p.Stock, nil
}

func (m *mockProductRepo) stock(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		return p.Stock
	}
	return -1
}

type duplicateKeyError struct{}

func (e *duplicateKeyError) Error() string {
	return `duplicate key value violates unique constraint "products_pkey"`
}

// --- In-memory CartRepository ---

type mockCartRepo struct {
	mu      sync.Mutex
	cart    *models.Cart
	saveErr error
	getErr  error
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{}
}

func (m *mockCartRepo) GetCart(_ context.Context) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.cart == nil {
		return nil, nil
	}
	copied := *m.cart
	copied.Lines = append([]models.CartLine(nil), m.cart.Lines...)
	return &copied, nil
}

func (m *mockCartRepo) SaveCart(_ context.Context, cart *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cart.UpdatedAt = time.Now()
	copied := *cart
	copied.Lines = append([]models.CartLine(nil), cart.Lines...)
	m.cart = &copied
	return nil
}

func (m *mockCartRepo) DeleteCart(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = nil
	return nil
}

// --- In-memory SettingsRepository ---

type mockSettingsRepo struct {
	mu     sync.Mutex
	values map[string]string
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{values: map[string]string{}}
}

func (m *mockSettingsRepo) GetAll(_ context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string]string, len(m.values))
	for k, v := range m.values {
		result[k] = v
	}
	return result, nil
}

func (m *mockSettingsRepo) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *mockSettingsRepo) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mockSettingsRepo) freeze(ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := json.Marshal(ids)
	m.values[models.FrozenProductsKey] = string(data)
}

// --- In-memory SaleRepository ---

// mockSaleRepo mirrors the transactional contract: on success the sale is
// appended and stock is decremented (clamped); on failure neither happens.
type mockSaleRepo struct {
	mu        sync.Mutex
	sales     []models.Sale
	products  *mockProductRepo
	createErr error
	nextID    uint
}

func newMockSaleRepo(products *mockProductRepo) *mockSaleRepo {
	return &mockSaleRepo{products: products, nextID: 1}
}

func (m *mockSaleRepo) CreateWithStockDecrement(ctx context.Context, sale *models.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}

	itemsJSON, err := json.Marshal(sale.Items)
	if err != nil {
		return err
	}
	sale.ItemsJSON = string(itemsJSON)
	sale.ID = m.nextID
	m.nextID++
	m.sales = append(m.sales, *sale)

	if m.products != nil {
		for _, item := range sale.Items {
			_, _ = m.products.AdjustStock(ctx, item.ID, -item.Qty)
		}
	}
	return nil
}

func (m *mockSaleRepo) FindAll(_ context.Context) ([]models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Sale(nil), m.sales...), nil
}
