// internal/domain/cart/service.go
package cart

import (
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"github.com/your-org/storefront-backend/internal/pkg/money"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the user's cart, or an empty-cart value when none exists.
// Reading never creates a cart record.
func (s *Service) GetCart(userID uint) (*Cart, error) {
	var userCart Cart
	err := s.db.Preload("Items").Where("user_id = ?", userID).First(&userCart).Error
	if err == gorm.ErrRecordNotFound {
		return &Cart{UserID: userID, Items: []CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	if userCart.Items == nil {
		userCart.Items = []CartItem{}
	}
	return &userCart, nil
}

// AddItem adds quantity units of a product to the cart, merging with an
// existing line and refreshing that line's price snapshot. The cart record
// is created on first add.
func (s *Service) AddItem(userID, productID uint, quantity int) (*Cart, error) {
	if quantity <= 0 {
		quantity = 1
	}

	prod, err := s.activeProduct(productID)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	userCart, err := s.findOrCreateCart(tx, userID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var item CartItem
	result := tx.Where("cart_id = ? AND product_id = ?", userCart.ID, productID).First(&item)
	if result.Error == gorm.ErrRecordNotFound {
		if prod.Stock < quantity {
			tx.Rollback()
			return nil, errs.New(errs.KindInsufficientStock, "insufficient stock for '%s'. Available: %d", prod.Name, prod.Stock)
		}
		item = CartItem{
			CartID:    userCart.ID,
			ProductID: productID,
			Name:      prod.Name,
			Image:     prod.PrimaryImage(),
			Quantity:  quantity,
			Price:     prod.Price,
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create cart item: %w", err)
		}
	} else if result.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to look up cart item: %w", result.Error)
	} else {
		newQuantity := item.Quantity + quantity
		if prod.Stock < newQuantity {
			tx.Rollback()
			return nil, errs.New(errs.KindInsufficientStock, "insufficient stock for '%s'. Available: %d", prod.Name, prod.Stock)
		}
		// Merging a line refreshes its snapshot; other lines stay stale
		item.Quantity = newQuantity
		item.Price = prod.Price
		item.Name = prod.Name
		item.Image = prod.PrimaryImage()
		if err := tx.Save(&item).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	}

	if err := s.recomputeTotal(tx, userCart.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit cart update: %w", err)
	}

	return s.GetCart(userID)
}

// SetItemQuantity sets the quantity of a cart line. A quantity of zero or
// less removes the line; otherwise the line's price snapshot is refreshed.
func (s *Service) SetItemQuantity(userID, productID uint, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(userID, productID)
	}

	prod, err := s.activeProduct(productID)
	if err != nil {
		return nil, err
	}

	if prod.Stock < quantity {
		return nil, errs.New(errs.KindInsufficientStock, "insufficient stock for '%s'. Available: %d", prod.Name, prod.Stock)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	userCart, err := s.findCart(tx, userID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var item CartItem
	if err := tx.Where("cart_id = ? AND product_id = ?", userCart.ID, productID).First(&item).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, errs.New(errs.KindNotFound, "item not found in cart")
		}
		return nil, fmt.Errorf("failed to look up cart item: %w", err)
	}

	item.Quantity = quantity
	item.Price = prod.Price
	item.Name = prod.Name
	item.Image = prod.PrimaryImage()
	if err := tx.Save(&item).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	if err := s.recomputeTotal(tx, userCart.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit cart update: %w", err)
	}

	return s.GetCart(userID)
}

// RemoveItem deletes a cart line
func (s *Service) RemoveItem(userID, productID uint) (*Cart, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	userCart, err := s.findCart(tx, userID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	result := tx.Where("cart_id = ? AND product_id = ?", userCart.ID, productID).Delete(&CartItem{})
	if result.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, errs.New(errs.KindNotFound, "item not found in cart")
	}

	if err := s.recomputeTotal(tx, userCart.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit cart update: %w", err)
	}

	return s.GetCart(userID)
}

// Clear empties the cart's items and zeroes its total. Clearing a
// non-existent cart is a no-op.
func (s *Service) Clear(userID uint) error {
	var userCart Cart
	err := s.db.Where("user_id = ?", userID).First(&userCart).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to retrieve cart: %w", err)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("cart_id = ?", userCart.ID).Delete(&CartItem{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	if err := tx.Model(&Cart{}).Where("id = ?", userCart.ID).Update("total_price", 0).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to zero cart total: %w", err)
	}

	return tx.Commit().Error
}

// Private helper methods

func (s *Service) activeProduct(productID uint) (*product.Product, error) {
	var prod product.Product
	err := s.db.Preload("Images").Where("id = ? AND is_active = ?", productID, true).First(&prod).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.New(errs.KindNotFound, "product %d not found", productID)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &prod, nil
}

func (s *Service) findCart(tx *gorm.DB, userID uint) (*Cart, error) {
	var userCart Cart
	if err := tx.Where("user_id = ?", userID).First(&userCart).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.New(errs.KindNotFound, "cart not found")
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return &userCart, nil
}

func (s *Service) findOrCreateCart(tx *gorm.DB, userID uint) (*Cart, error) {
	var userCart Cart
	err := tx.Where("user_id = ?", userID).First(&userCart).Error
	if err == gorm.ErrRecordNotFound {
		userCart = Cart{UserID: userID}
		if err := tx.Create(&userCart).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return &userCart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return &userCart, nil
}

// recomputeTotal rewrites the cart total from its items so the derived
// total always matches the sum of item subtotals.
func (s *Service) recomputeTotal(tx *gorm.DB, cartID uint) error {
	var items []CartItem
	if err := tx.Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to load cart items: %w", err)
	}

	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}

	if err := tx.Model(&Cart{}).Where("id = ?", cartID).Update("total_price", money.Round(total)).Error; err != nil {
		return fmt.Errorf("failed to update cart total: %w", err)
	}
	return nil
}
