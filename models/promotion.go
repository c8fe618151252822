package models

import (
	"encoding/json"
	"time"
)

// PromotionType distinguishes the two campaign display kinds.
type PromotionType string

const (
	PromotionTypeBanner    PromotionType = "banner"
	PromotionTypeSpinWheel PromotionType = "spin_wheel"
)

// Promotion is a staff-created campaign. Content is an opaque JSON payload
// (message, image, discount code, wheel segments) interpreted by the
// frontend only.
type Promotion struct {
	ID        uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Type      PromotionType `gorm:"type:varchar(20);not null" json:"type"`
	Title     string        `gorm:"type:varchar(128);not null" json:"title"`
	Content   string        `gorm:"type:text;not null" json:"-"`
	Active    bool          `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	LastShown *time.Time    `json:"last_shown,omitempty"`
}

// MarshalJSON inlines the stored content payload as a JSON object.
func (p Promotion) MarshalJSON() ([]byte, error) {
	type alias Promotion
	content := json.RawMessage(p.Content)
	if len(content) == 0 {
		content = json.RawMessage("null")
	}
	return json.Marshal(struct {
		alias
		Content json.RawMessage `json:"content"`
	}{alias(p), content})
}

// AddPromotionRequest is the payload for creating a campaign.
type AddPromotionRequest struct {
	Type    PromotionType   `json:"type" binding:"required,oneof=banner spin_wheel"`
	Title   string          `json:"title" binding:"required"`
	Content json.RawMessage `json:"content" binding:"required"`
}

// CurrentPromotions is the composite selection shown to the trolley: the
// spin wheel always wins when present, the banner rotates on a 30-minute
// wall-clock window.
type CurrentPromotions struct {
	SpinWheel *Promotion `json:"spin_wheel"`
	Banner    *Promotion `json:"banner"`
}
