package models

import "time"

// Staff actions recorded in the audit log.
const (
	AuditActionProductAdded     = "product_added"
	AuditActionProductUpdated   = "product_updated"
	AuditActionProductDeleted   = "product_deleted"
	AuditActionStockAdjusted    = "stock_adjusted"
	AuditActionProductFrozen    = "product_frozen"
	AuditActionProductUnfrozen  = "product_unfrozen"
	AuditActionPromotionAdded   = "promotion_added"
	AuditActionPromotionDeleted = "promotion_deleted"
	AuditActionSettingsUpdated  = "settings_updated"
	AuditActionCartCleared      = "cart_cleared"
)

// AuditEntry is one immutable JSON line in the audit log.
type AuditEntry struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Actor     string                 `json:"actor"`
	Action    string                 `json:"action"`
	TargetID  string                 `json:"target_id"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
