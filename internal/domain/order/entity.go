// internal/domain/order/entity.go
package order

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PaymentMethod represents how an order is paid
type PaymentMethod string

const (
	PaymentMethodGateway        PaymentMethod = "gateway"
	PaymentMethodCOD            PaymentMethod = "cod"
	PaymentMethodDirectTransfer PaymentMethod = "direct_transfer"
)

// ParseOrderStatus maps client input onto the closed status enum
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case OrderStatusProcessing:
		return OrderStatusProcessing, true
	case OrderStatusShipped:
		return OrderStatusShipped, true
	case OrderStatusDelivered:
		return OrderStatusDelivered, true
	}
	return "", false
}

// ParsePaymentMethod normalizes client payment method input
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gateway":
		return PaymentMethodGateway, true
	case "cod", "cash_on_delivery", "cash-on-delivery":
		return PaymentMethodCOD, true
	case "direct_transfer", "direct-transfer":
		return PaymentMethodDirectTransfer, true
	}
	return "", false
}

// ShippingInfo is the address snapshot embedded in an order
type ShippingInfo struct {
	Address    string `gorm:"size:255" json:"address"`
	City       string `gorm:"size:100" json:"city"`
	State      string `gorm:"size:100" json:"state"`
	PostalCode string `gorm:"size:20" json:"postal_code"`
	Country    string `gorm:"size:100" json:"country"`
	Phone      string `gorm:"size:20" json:"phone"`
}

// PaymentInfo is the payment snapshot embedded in an order
type PaymentInfo struct {
	Method    PaymentMethod `gorm:"size:50;not null" json:"method"`
	Reference string        `gorm:"size:255" json:"reference"`
	Status    PaymentStatus `gorm:"size:50;not null" json:"status"`
}

// Order is the immutable record of a completed purchase intent. After
// creation only Status and DeliveredAt change, via the lifecycle manager.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`

	ShippingInfo ShippingInfo `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_info"`
	PaymentInfo  PaymentInfo  `gorm:"embedded;embeddedPrefix:payment_" json:"payment_info"`

	ItemsPrice    float64 `gorm:"not null" json:"items_price"`
	TaxPrice      float64 `gorm:"not null" json:"tax_price"`
	ShippingPrice float64 `gorm:"not null" json:"shipping_price"`
	TotalPrice    float64 `gorm:"not null" json:"total_price"`

	Status      OrderStatus `gorm:"not null;default:'processing'" json:"status"`
	PaidAt      *time.Time  `json:"paid_at"`
	DeliveredAt *time.Time  `json:"delivered_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem is an immutable line copied from a cart item at placement time.
// It decouples the order's historical record from later product changes.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Image     string    `gorm:"size:500" json:"image"`
	Price     float64   `gorm:"not null" json:"price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// IsTerminal reports whether the order has reached its final status
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered
}
