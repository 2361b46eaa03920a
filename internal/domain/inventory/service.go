// internal/domain/inventory/service.go
package inventory

import (
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"gorm.io/gorm"
)

// Service owns per-product stock counts. Every mutation goes through a
// conditional update so stock can never drop below zero, and every mutation
// leaves a StockMovement ledger row.
type Service struct {
	db *gorm.DB
}

// NewService creates a new inventory service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db: db,
	}
}

// CheckAvailable reports whether the product currently has at least
// quantity units in stock.
func (s *Service) CheckAvailable(productID uint, quantity int) (bool, error) {
	var prod product.Product
	if err := s.db.Select("id", "stock").Where("id = ?", productID).First(&prod).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, errs.New(errs.KindNotFound, "product %d not found", productID)
		}
		return false, fmt.Errorf("failed to retrieve product stock: %w", err)
	}
	return prod.Stock >= quantity, nil
}

// Decrement reserves quantity units of stock inside tx using a single
// conditional update; zero rows affected means the stock ran out between
// check and decrement and the caller must roll back.
func (s *Service) Decrement(tx *gorm.DB, productID uint, quantity int, reference string) error {
	if quantity <= 0 {
		return errs.New(errs.KindValidation, "quantity must be positive")
	}

	result := tx.Model(&product.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var prod product.Product
		if err := tx.Select("id", "name").Where("id = ?", productID).First(&prod).Error; err != nil {
			return errs.New(errs.KindNotFound, "product %d not found", productID)
		}
		return errs.New(errs.KindOutOfStock, "insufficient stock for product '%s'", prod.Name)
	}

	return s.record(tx, productID, -quantity, ReasonSale, reference)
}

// Restore returns quantity units of stock inside tx, used when a placed
// order is deleted.
func (s *Service) Restore(tx *gorm.DB, productID uint, quantity int, reference string) error {
	if quantity <= 0 {
		return errs.New(errs.KindValidation, "quantity must be positive")
	}

	result := tx.Model(&product.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to restore stock: %w", result.Error)
	}

	return s.record(tx, productID, quantity, ReasonOrderDeleted, reference)
}

// Adjust applies an admin stock correction. Negative deltas are bounded by
// the available stock.
func (s *Service) Adjust(productID uint, delta int, reason MovementReason) error {
	if delta == 0 {
		return errs.New(errs.KindValidation, "adjustment delta cannot be zero")
	}
	if reason == "" {
		reason = ReasonAdjustment
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	query := tx.Model(&product.Product{}).Where("id = ?", productID)
	if delta < 0 {
		query = query.Where("stock >= ?", -delta)
	}

	result := query.UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		tx.Rollback()
		return fmt.Errorf("failed to adjust stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		var prod product.Product
		if err := s.db.Select("id").Where("id = ?", productID).First(&prod).Error; err != nil {
			return errs.New(errs.KindNotFound, "product %d not found", productID)
		}
		return errs.New(errs.KindInsufficientStock, "adjustment would drive stock below zero")
	}

	if err := s.record(tx, productID, delta, reason, ""); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// Movements lists the ledger rows for a product, newest first
func (s *Service) Movements(productID uint) ([]StockMovement, error) {
	var movements []StockMovement
	err := s.db.Where("product_id = ?", productID).Order("created_at DESC").Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stock movements: %w", err)
	}
	return movements, nil
}

func (s *Service) record(tx *gorm.DB, productID uint, delta int, reason MovementReason, reference string) error {
	movement := StockMovement{
		ProductID: productID,
		Quantity:  delta,
		Reason:    reason,
		Reference: reference,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}
