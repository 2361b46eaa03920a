// internal/domain/inventory/service_test.go
package inventory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&product.Product{}, &StockMovement{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) *product.Product {
	t.Helper()
	p := &product.Product{Name: "Widget", Price: 9.99, Stock: stock, Category: "general", IsActive: true}
	require.NoError(t, db.Create(p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p product.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func TestCheckAvailable(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db, 3)

	ok, err := svc.CheckAvailable(p.ID, 3)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.CheckAvailable(p.ID, 4)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.CheckAvailable(999, 1)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestDecrementConditional(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db, 5)

	require.NoError(t, svc.Decrement(db, p.ID, 3, "ORD-1"))
	require.Equal(t, 2, stockOf(t, db, p.ID))

	// Demanding more than remains fails and leaves stock untouched
	err := svc.Decrement(db, p.ID, 3, "ORD-2")
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindOutOfStock))
	require.Contains(t, err.Error(), "Widget")
	require.Equal(t, 2, stockOf(t, db, p.ID))
}

func TestDecrementUnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	err := svc.Decrement(db, 999, 1, "ORD-1")
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestRestore(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db, 2)

	require.NoError(t, svc.Restore(db, p.ID, 4, "ORD-1"))
	require.Equal(t, 6, stockOf(t, db, p.ID))
}

func TestAdjustBoundsNegativeDelta(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db, 5)

	require.NoError(t, svc.Adjust(p.ID, -5, ReasonAdjustment))
	require.Equal(t, 0, stockOf(t, db, p.ID))

	err := svc.Adjust(p.ID, -1, ReasonAdjustment)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindInsufficientStock))
	require.Equal(t, 0, stockOf(t, db, p.ID))
}

func TestAdjustZeroDelta(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db, 5)

	err := svc.Adjust(p.ID, 0, ReasonAdjustment)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestMovementsLedger(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db, 10)

	require.NoError(t, svc.Decrement(db, p.ID, 2, "ORD-42"))
	require.NoError(t, svc.Adjust(p.ID, 5, ReasonRestock))

	movements, err := svc.Movements(p.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)

	byReason := map[MovementReason]StockMovement{}
	for _, m := range movements {
		byReason[m.Reason] = m
	}
	require.Equal(t, -2, byReason[ReasonSale].Quantity)
	require.Equal(t, "ORD-42", byReason[ReasonSale].Reference)
	require.Equal(t, 5, byReason[ReasonRestock].Quantity)
}
