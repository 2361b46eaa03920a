// internal/domain/cart/entity.go
package cart

import "time"

// Cart is the single active cart for a user. TotalPrice is derived and
// recomputed after every mutation.
type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalPrice float64    `gorm:"not null;default:0" json:"total_price"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CartItem references a product and carries a snapshot of its name, image
// and price taken the last time this item was touched. Untouched items keep
// a stale snapshot until the next add or quantity update.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;index" json:"cart_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Image     string    `gorm:"size:500" json:"image"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     float64   `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

// Subtotal returns the item's contribution to the cart total
func (i *CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}
