// internal/domain/inventory/entity.go
package inventory

import "time"

// MovementReason represents the reason for a stock movement
type MovementReason string

const (
	ReasonSale         MovementReason = "sale"
	ReasonRestock      MovementReason = "restock"
	ReasonOrderDeleted MovementReason = "order_deleted"
	ReasonAdjustment   MovementReason = "adjustment"
)

// StockMovement is one ledger row per stock mutation. Quantity is the
// signed delta applied to the product's stock.
type StockMovement struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	Quantity  int            `gorm:"not null" json:"quantity"`
	Reason    MovementReason `gorm:"not null;size:50" json:"reason"`
	Reference string         `gorm:"size:100" json:"reference"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName overrides
func (StockMovement) TableName() string { return "stock_movements" }
