// internal/domain/product/review_service.go
package product

import (
	"fmt"
	"strings"

	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"gorm.io/gorm"
)

// ReviewService handles review business logic and keeps the product's
// rating aggregates consistent with the stored reviews.
type ReviewService struct {
	db *gorm.DB
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{
		db: db,
	}
}

// UpsertReviewRequest represents review submission data
type UpsertReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

// UpsertReview creates a review or updates the requester's existing review
// for the product, then recomputes the product's rating and review count.
// One review per (user, product) is enforced by lookup-then-upsert.
func (s *ReviewService) UpsertReview(userID uint, reviewerName string, productID uint, req *UpsertReviewRequest) (*ProductReview, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, errs.New(errs.KindValidation, "rating must be between 1 and 5")
	}

	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, errs.New(errs.KindValidation, "comment cannot be empty")
	}

	var prod Product
	if err := s.db.Where("id = ?", productID).First(&prod).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.New(errs.KindNotFound, "product %d not found", productID)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	purchased, err := s.hasQualifyingOrder(userID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, errs.New(errs.KindPurchaseRequired, "you can only review products from shipped or delivered orders")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var review ProductReview
	result := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&review)
	if result.Error == gorm.ErrRecordNotFound {
		review = ProductReview{
			ProductID:    productID,
			UserID:       userID,
			ReviewerName: reviewerName,
			Rating:       req.Rating,
			Comment:      comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create review: %w", err)
		}
	} else if result.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to look up review: %w", result.Error)
	} else {
		review.Rating = req.Rating
		review.Comment = comment
		if err := tx.Save(&review).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update review: %w", err)
		}
	}

	if err := s.recomputeAggregates(tx, productID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit review: %w", err)
	}

	return &review, nil
}

// DeleteReview removes a review when the requester is the author or an
// admin, then recomputes the product's aggregates.
func (s *ReviewService) DeleteReview(productID, reviewID, requesterID uint, isAdmin bool) error {
	var prod Product
	if err := s.db.Where("id = ?", productID).First(&prod).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.New(errs.KindNotFound, "product %d not found", productID)
		}
		return fmt.Errorf("failed to retrieve product: %w", err)
	}

	var review ProductReview
	if err := s.db.Where("id = ? AND product_id = ?", reviewID, productID).First(&review).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.New(errs.KindNotFound, "review %d not found", reviewID)
		}
		return fmt.Errorf("failed to retrieve review: %w", err)
	}

	if !isAdmin && review.UserID != requesterID {
		return errs.New(errs.KindForbidden, "you cannot delete this review")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Delete(&review).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if err := s.recomputeAggregates(tx, productID); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// ProductReviews lists the reviews for a product, newest first
func (s *ReviewService) ProductReviews(productID uint) ([]ProductReview, error) {
	var prod Product
	if err := s.db.Where("id = ?", productID).First(&prod).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.New(errs.KindNotFound, "product %d not found", productID)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	var reviews []ProductReview
	if err := s.db.Where("product_id = ?", productID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}
	return reviews, nil
}

// hasQualifyingOrder reports whether the user has an order containing the
// product with status shipped or delivered.
func (s *ReviewService) hasQualifyingOrder(userID, productID uint) (bool, error) {
	var exists bool
	err := s.db.Raw(`
		SELECT EXISTS(
			SELECT 1 FROM orders o
			JOIN order_items oi ON o.id = oi.order_id
			WHERE o.user_id = ? AND oi.product_id = ?
			AND o.status IN ('shipped', 'delivered')
			AND o.deleted_at IS NULL
		)
	`, userID, productID).Scan(&exists).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	return exists, nil
}

// recomputeAggregates rewrites the product's average rating and review
// count from the stored reviews. Rating defaults to 0 when none remain.
func (s *ReviewService) recomputeAggregates(tx *gorm.DB, productID uint) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&ProductReview{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	err = tx.Model(&Product{}).Where("id = ?", productID).Updates(map[string]interface{}{
		"ratings":     agg.Avg,
		"num_reviews": agg.Count,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update product aggregates: %w", err)
	}
	return nil
}
