// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"github.com/your-org/storefront-backend/internal/pkg/money"
	"gorm.io/gorm"
)

// Service handles order placement and lifecycle business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	cart      *cart.Service
	inventory *inventory.Service
	sender    email.Sender
	logger    *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, cartService *cart.Service, inventoryService *inventory.Service, sender email.Sender, logger *logrus.Logger) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		cart:      cartService,
		inventory: inventoryService,
		sender:    sender,
		logger:    logger,
	}
}

// PaymentInput represents client-submitted payment data
type PaymentInput struct {
	Method    string `json:"method" binding:"required"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// PlaceOrderRequest represents order creation data. The price fields are
// client-submitted and verified against each other and against the
// server-held cart total before anything is persisted.
type PlaceOrderRequest struct {
	ShippingInfo  ShippingInfo `json:"shipping_info" binding:"required"`
	Payment       PaymentInput `json:"payment_info" binding:"required"`
	ItemsPrice    float64      `json:"items_price"`
	TaxPrice      float64      `json:"tax_price"`
	ShippingPrice float64      `json:"shipping_price"`
	TotalPrice    float64      `json:"total_price"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page   int         `form:"page,default=1"`
	Limit  int         `form:"limit,default=20"`
	Status OrderStatus `form:"status"`
	UserID uint        `form:"user_id"`
}

// OrderListResponse represents order list response with pagination
type OrderListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// PlaceOrder converts the user's cart into an immutable order. Stock
// verification, order creation, stock decrement and cart teardown run in a
// single transaction with conditional decrements, so concurrent placements
// against the same limited-stock product cannot oversell.
func (s *Service) PlaceOrder(userID uint, userEmail string, req *PlaceOrderRequest) (*Order, error) {
	payment, paidAt, err := s.validatePayment(&req.Payment)
	if err != nil {
		return nil, err
	}

	if req.ItemsPrice < 0 || req.TaxPrice < 0 || req.ShippingPrice < 0 || req.TotalPrice < 0 {
		return nil, errs.New(errs.KindInvalidPricing, "price fields cannot be negative")
	}

	expected := money.Round(req.ItemsPrice + req.TaxPrice + req.ShippingPrice)
	if math.Abs(req.TotalPrice-expected) > money.Tolerance {
		return nil, errs.New(errs.KindPriceMismatch, "total price %.2f does not match expected %.2f", req.TotalPrice, expected)
	}

	userCart, err := s.cart.GetCart(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	if len(userCart.Items) == 0 {
		return nil, errs.New(errs.KindEmptyCart, "cart is empty")
	}

	// Client itemsPrice must agree with the server-held cart total
	if !money.Equal(req.ItemsPrice, userCart.TotalPrice) {
		return nil, errs.New(errs.KindPriceMismatch, "items price %.2f does not match cart total %.2f", req.ItemsPrice, userCart.TotalPrice)
	}

	// Build immutable order items from the cart's snapshots
	orderItems := make([]OrderItem, len(userCart.Items))
	for i, item := range userCart.Items {
		orderItems[i] = OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Full availability pass over all items before any mutation
	for _, item := range orderItems {
		available, err := s.inventory.CheckAvailable(item.ProductID, item.Quantity)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if !available {
			tx.Rollback()
			return nil, errs.New(errs.KindOutOfStock, "insufficient stock for '%s'", item.Name)
		}
	}

	newOrder := Order{
		UserID:        userID,
		ShippingInfo:  req.ShippingInfo,
		PaymentInfo:   payment,
		ItemsPrice:    money.Round(req.ItemsPrice),
		TaxPrice:      money.Round(req.TaxPrice),
		ShippingPrice: money.Round(req.ShippingPrice),
		TotalPrice:    money.Round(req.TotalPrice),
		Status:        OrderStatusProcessing,
		PaidAt:        paidAt,
		Items:         orderItems,
	}

	if err := tx.Create(&newOrder).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	newOrder.OrderNumber = generateOrderNumber(newOrder.ID)
	if err := tx.Model(&newOrder).Update("order_number", newOrder.OrderNumber).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update order number: %w", err)
	}

	// Conditional decrement per item; a failure here means another
	// placement won the race and the whole order rolls back
	for _, item := range newOrder.Items {
		if err := s.inventory.Decrement(tx, item.ProductID, item.Quantity, newOrder.OrderNumber); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Tear down the cart inside the same transaction
	if err := tx.Where("cart_id = ?", userCart.ID).Delete(&cart.CartItem{}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to clear cart items: %w", err)
	}
	if err := tx.Where("id = ?", userCart.ID).Delete(&cart.Cart{}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to delete cart: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	s.sendConfirmation(userEmail, &newOrder)

	if err := s.db.Preload("Items").First(&newOrder, newOrder.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load created order: %w", err)
	}

	return &newOrder, nil
}

// GetOrder retrieves a single order by ID
func (s *Service) GetOrder(id uint) (*Order, error) {
	var o Order
	err := s.db.Preload("Items").Where("id = ?", id).First(&o).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.New(errs.KindNotFound, "order %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// GetOrders retrieves orders with filtering and pagination
func (s *Service) GetOrders(req *OrderListRequest) (*OrderListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Order{}).Preload("Items")
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &OrderListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetUserOrders retrieves orders for a specific user
func (s *Service) GetUserOrders(userID uint, page, limit int) (*OrderListResponse, error) {
	return s.GetOrders(&OrderListRequest{Page: page, Limit: limit, UserID: userID})
}

// SetStatus advances the order through the closed transition table
// {processing -> shipped, shipped -> delivered}. Delivered is terminal:
// any further transition fails AlreadyDelivered. Entering delivered stamps
// DeliveredAt.
func (s *Service) SetStatus(orderID uint, newStatus string) error {
	status, ok := ParseOrderStatus(newStatus)
	if !ok {
		return errs.New(errs.KindValidation, "unknown order status %q", newStatus)
	}

	var o Order
	if err := s.db.First(&o, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.New(errs.KindNotFound, "order %d not found", orderID)
		}
		return fmt.Errorf("failed to retrieve order: %w", err)
	}

	if o.IsTerminal() {
		return errs.New(errs.KindAlreadyDelivered, "order %s has already been delivered", o.OrderNumber)
	}

	if !validTransition(o.Status, status) {
		return errs.New(errs.KindValidation, "invalid status transition from %s to %s", o.Status, status)
	}

	updates := map[string]interface{}{
		"status": status,
	}
	if status == OrderStatusDelivered {
		updates["delivered_at"] = time.Now().UTC()
	}

	if err := s.db.Model(&o).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// MarkPaid records payment reconciliation for deferred payment methods
func (s *Service) MarkPaid(orderID uint, reference string) error {
	var o Order
	if err := s.db.First(&o, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.New(errs.KindNotFound, "order %d not found", orderID)
		}
		return fmt.Errorf("failed to retrieve order: %w", err)
	}

	if o.PaymentInfo.Status == PaymentStatusPaid {
		return errs.New(errs.KindConflict, "order %s is already paid", o.OrderNumber)
	}

	updates := map[string]interface{}{
		"payment_status": PaymentStatusPaid,
		"paid_at":        time.Now().UTC(),
	}
	if reference != "" {
		updates["payment_reference"] = reference
	}

	if err := s.db.Model(&o).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	return nil
}

// DeleteOrder removes an order unconditionally and restores the stock its
// placement decremented, in one transaction.
func (s *Service) DeleteOrder(orderID uint) error {
	var o Order
	if err := s.db.Preload("Items").First(&o, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.New(errs.KindNotFound, "order %d not found", orderID)
		}
		return fmt.Errorf("failed to retrieve order: %w", err)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, item := range o.Items {
		if err := s.inventory.Restore(tx, item.ProductID, item.Quantity, o.OrderNumber); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Delete(&o).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete order: %w", err)
	}

	return tx.Commit().Error
}

// Private helper methods

// validatePayment enforces the payment method rules: deferred methods are
// forced to pending regardless of client input, gateway payments need an
// external reference and are stamped paid at placement time.
func (s *Service) validatePayment(input *PaymentInput) (PaymentInfo, *time.Time, error) {
	method, ok := ParsePaymentMethod(input.Method)
	if !ok {
		return PaymentInfo{}, nil, errs.New(errs.KindInvalidPaymentMethod, "unsupported payment method %q", input.Method)
	}

	switch method {
	case PaymentMethodGateway:
		if input.Reference == "" {
			return PaymentInfo{}, nil, errs.New(errs.KindMissingPaymentReference, "gateway payments require a payment reference")
		}
		now := time.Now().UTC()
		return PaymentInfo{
			Method:    method,
			Reference: input.Reference,
			Status:    PaymentStatusPaid,
		}, &now, nil
	default:
		return PaymentInfo{
			Method:    method,
			Reference: input.Reference,
			Status:    PaymentStatusPending,
		}, nil, nil
	}
}

func (s *Service) sendConfirmation(userEmail string, o *Order) {
	if s.sender == nil || userEmail == "" {
		return
	}

	msg := email.OrderConfirmation(userEmail, o.OrderNumber, o.TotalPrice, len(o.Items))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.WithError(err).WithField("order", o.OrderNumber).Warn("failed to send order confirmation")
	}
}

func validTransition(from, to OrderStatus) bool {
	switch from {
	case OrderStatusProcessing:
		return to == OrderStatusShipped
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	}
	return false
}

func generateOrderNumber(orderID uint) string {
	// Format: ORD-YYYYMMDD-XXXXX
	return fmt.Sprintf("ORD-%s-%05d", time.Now().Format("20060102"), orderID)
}
