// internal/domain/product/review_service_test.go
package product_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

func setupReviewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&product.Product{},
		&product.ProductImage{},
		&product.ProductReview{},
		&order.Order{},
		&order.OrderItem{},
	))
	return db
}

func seedReviewProduct(t *testing.T, db *gorm.DB) *product.Product {
	t.Helper()
	p := &product.Product{Name: "Trail Shoes", Price: 89.99, Stock: 10, Category: "footwear", IsActive: true}
	require.NoError(t, db.Create(p).Error)
	return p
}

// seedOrder creates an order for userID containing productID at the given
// status, so the purchase gate can be exercised per status.
func seedOrder(t *testing.T, db *gorm.DB, userID, productID uint, status order.OrderStatus) {
	t.Helper()
	o := &order.Order{
		OrderNumber: fmt.Sprintf("ORD-TEST-%s-%d", status, userID),
		UserID:      userID,
		Status:      status,
		TotalPrice:  89.99,
		ItemsPrice:  89.99,
		Items: []order.OrderItem{
			{ProductID: productID, Name: "Trail Shoes", Price: 89.99, Quantity: 1},
		},
	}
	require.NoError(t, db.Create(o).Error)
}

func review(rating int, comment string) *product.UpsertReviewRequest {
	return &product.UpsertReviewRequest{Rating: rating, Comment: comment}
}

func TestUpsertReviewRequiresQualifyingPurchase(t *testing.T) {
	db := setupReviewDB(t)
	svc := product.NewReviewService(db)
	p := seedReviewProduct(t, db)

	// No order at all
	_, err := svc.UpsertReview(1, "Alice", p.ID, review(5, "great"))
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindPurchaseRequired))

	// An order still in processing does not qualify
	seedOrder(t, db, 1, p.ID, order.OrderStatusProcessing)
	_, err = svc.UpsertReview(1, "Alice", p.ID, review(5, "great"))
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindPurchaseRequired))
}

func TestUpsertReviewShippedOrderQualifies(t *testing.T) {
	db := setupReviewDB(t)
	svc := product.NewReviewService(db)
	p := seedReviewProduct(t, db)
	seedOrder(t, db, 1, p.ID, order.OrderStatusShipped)

	r, err := svc.UpsertReview(1, "Alice", p.ID, review(4, "solid shoes"))
	require.NoError(t, err)
	require.Equal(t, 4, r.Rating)
	require.Equal(t, "Alice", r.ReviewerName)
}

func TestReviewAggregatesAcrossUsers(t *testing.T) {
	db := setupReviewDB(t)
	svc := product.NewReviewService(db)
	p := seedReviewProduct(t, db)

	for userID, rating := range map[uint]int{1: 5, 2: 4, 3: 3} {
		seedOrder(t, db, userID, p.ID, order.OrderStatusDelivered)
		_, err := svc.UpsertReview(userID, "User", p.ID, review(rating, "review text"))
		require.NoError(t, err)
	}

	var fresh product.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	require.InDelta(t, 4.0, fresh.Ratings, 0.001)
	require.Equal(t, 3, fresh.NumReviews)
}

func TestUpsertReviewUpdatesExistingRow(t *testing.T) {
	db := setupReviewDB(t)
	svc := product.NewReviewService(db)
	p := seedReviewProduct(t, db)
	seedOrder(t, db, 1, p.ID, order.OrderStatusDelivered)

	first, err := svc.UpsertReview(1, "Alice", p.ID, review(2, "meh"))
	require.NoError(t, err)
	second, err := svc.UpsertReview(1, "Alice", p.ID, review(5, "grew on me"))
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	reviews, err := svc.ProductReviews(p.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.Equal(t, 5, reviews[0].Rating)
	require.Equal(t, "grew on me", reviews[0].Comment)

	var fresh product.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	require.InDelta(t, 5.0, fresh.Ratings, 0.001)
	require.Equal(t, 1, fresh.NumReviews)
}

func TestDeleteReviewAuthorization(t *testing.T) {
	db := setupReviewDB(t)
	svc := product.NewReviewService(db)
	p := seedReviewProduct(t, db)
	seedOrder(t, db, 1, p.ID, order.OrderStatusDelivered)

	r, err := svc.UpsertReview(1, "Alice", p.ID, review(5, "great"))
	require.NoError(t, err)

	// Another non-admin user cannot delete it
	err = svc.DeleteReview(p.ID, r.ID, 2, false)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindForbidden))

	// An admin can
	require.NoError(t, svc.DeleteReview(p.ID, r.ID, 2, true))
}

func TestDeleteLastReviewResetsAggregates(t *testing.T) {
	db := setupReviewDB(t)
	svc := product.NewReviewService(db)
	p := seedReviewProduct(t, db)
	seedOrder(t, db, 1, p.ID, order.OrderStatusDelivered)

	r, err := svc.UpsertReview(1, "Alice", p.ID, review(4, "nice"))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteReview(p.ID, r.ID, 1, false))

	var fresh product.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	require.Zero(t, fresh.Ratings)
	require.Zero(t, fresh.NumReviews)
}

func TestUpsertReviewValidation(t *testing.T) {
	db := setupReviewDB(t)
	svc := product.NewReviewService(db)
	p := seedReviewProduct(t, db)

	_, err := svc.UpsertReview(1, "Alice", p.ID, review(6, "too good"))
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindValidation))

	_, err = svc.UpsertReview(1, "Alice", p.ID, review(3, "   "))
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestReviewUnknownProduct(t *testing.T) {
	db := setupReviewDB(t)
	svc := product.NewReviewService(db)

	_, err := svc.UpsertReview(1, "Alice", 999, review(3, "where is it"))
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindNotFound))

	_, err = svc.ProductReviews(999)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}
