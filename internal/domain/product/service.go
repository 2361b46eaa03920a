// internal/domain/product/service.go
package product

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/ai"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"github.com/your-org/storefront-backend/internal/pkg/metrics"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	normalizer  ai.Normalizer
	ranker      ai.Ranker
	logger      *logrus.Logger
}

// NewService creates a new product service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, normalizer ai.Normalizer, ranker ai.Ranker, logger *logrus.Logger) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
		normalizer:  normalizer,
		ranker:      ranker,
		logger:      logger,
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Stock       int      `json:"stock" binding:"min=0"`
	Category    string   `json:"category" binding:"required"`
	Images      []string `json:"images"`
}

// UpdateProductRequest represents product update data
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Category    *string  `json:"category,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// ProductListRequest represents catalog list query parameters
type ProductListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Category string `form:"category"`
	SortBy   string `form:"sort_by"`
}

// SearchResponse represents an AI-normalized search result
type SearchResponse struct {
	Query    string           `json:"query"`
	Filters  ai.SearchFilters `json:"filters"`
	Products []Product        `json:"products"`
}

// GetProduct retrieves a single active product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var prod Product
	err := s.db.Preload("Images").Where("id = ?", id).First(&prod).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.New(errs.KindNotFound, "product %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &prod, nil
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) ([]Product, int64, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Product{}).Preload("Images").Where("is_active = ?", true)
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Order(orderClause(req.SortBy))

	var products []Product
	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return products, total, nil
}

// CreateProduct creates a new catalog product
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	if req.Price <= 0 {
		return nil, errs.New(errs.KindValidation, "price must be positive")
	}
	if req.Stock < 0 {
		return nil, errs.New(errs.KindValidation, "stock cannot be negative")
	}

	prod := Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		IsActive:    true,
	}

	for i, url := range req.Images {
		prod.Images = append(prod.Images, ProductImage{
			URL:       url,
			SortOrder: i + 1,
			IsPrimary: i == 0,
		})
	}

	if err := s.db.Create(&prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &prod, nil
}

// UpdateProduct applies a partial update to a catalog product
func (s *Service) UpdateProduct(id uint, req *UpdateProductRequest) (*Product, error) {
	prod, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, errs.New(errs.KindValidation, "price must be positive")
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, errs.New(errs.KindValidation, "stock cannot be negative")
		}
		updates["stock"] = *req.Stock
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(prod).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.GetProduct(id)
}

// DeleteProduct soft-deletes a catalog product
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.New(errs.KindNotFound, "product %d not found", id)
	}
	return nil
}

// Search runs an AI-normalized catalog search. The normalization layer
// never fails the caller; on degradation the raw query becomes the keyword.
func (s *Service) Search(ctx context.Context, query string) (*SearchResponse, error) {
	filters := s.normalizer.NormalizeFilters(ctx, query)

	if cached := s.cachedSearch(ctx, filters); cached != nil {
		return cached, nil
	}

	q := s.db.Model(&Product{}).Preload("Images").Where("is_active = ?", true)
	if filters.Keyword != "" {
		keyword := "%" + filters.Keyword + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", keyword, keyword)
	}
	if filters.Category != "" {
		q = q.Where("category = ?", filters.Category)
	}
	if filters.MinPrice > 0 {
		q = q.Where("price >= ?", filters.MinPrice)
	}
	if filters.MaxPrice > 0 {
		q = q.Where("price <= ?", filters.MaxPrice)
	}
	if filters.MinRating > 0 {
		q = q.Where("ratings >= ?", filters.MinRating)
	}

	var candidates []Product
	limit := s.config.Search.MaxCandidates
	if limit <= 0 {
		limit = 50
	}
	if err := q.Order(orderClause(filters.SortBy)).Limit(limit).Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	products := s.rankCandidates(ctx, query, filters, candidates)

	response := &SearchResponse{
		Query:    query,
		Filters:  filters,
		Products: products,
	}
	s.cacheSearch(ctx, filters, response)

	return response, nil
}

// rankCandidates orders the candidate set with the ranker when no explicit
// sort was requested; an explicit sort_by wins over AI ranking.
func (s *Service) rankCandidates(ctx context.Context, query string, filters ai.SearchFilters, candidates []Product) []Product {
	if filters.SortBy != "" || len(candidates) == 0 {
		return candidates
	}

	summaries := make([]ai.ProductSummary, len(candidates))
	byID := make(map[uint]Product, len(candidates))
	for i, p := range candidates {
		summaries[i] = ai.ProductSummary{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    p.Price,
			Ratings:  p.Ratings,
		}
		byID[p.ID] = p
	}

	ranked := s.ranker.RankProducts(ctx, query, summaries)
	products := make([]Product, 0, len(ranked))
	for _, id := range ranked {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products
}

func (s *Service) searchCacheKey(filters ai.SearchFilters) string {
	return fmt.Sprintf("search:%s:%s:%.2f:%.2f:%.1f:%s",
		filters.Keyword, filters.Category, filters.MinPrice, filters.MaxPrice, filters.MinRating, filters.SortBy)
}

func (s *Service) cachedSearch(ctx context.Context, filters ai.SearchFilters) *SearchResponse {
	if s.redisClient == nil {
		return nil
	}

	data, err := s.redisClient.Get(ctx, s.searchCacheKey(filters)).Result()
	if err != nil {
		metrics.SearchCacheMisses.Inc()
		return nil
	}

	var response SearchResponse
	if err := json.Unmarshal([]byte(data), &response); err != nil {
		metrics.SearchCacheMisses.Inc()
		return nil
	}

	metrics.SearchCacheHits.Inc()
	return &response
}

func (s *Service) cacheSearch(ctx context.Context, filters ai.SearchFilters, response *SearchResponse) {
	if s.redisClient == nil {
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		return
	}

	ttl := s.config.Search.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if err := s.redisClient.Set(ctx, s.searchCacheKey(filters), data, ttl).Err(); err != nil {
		s.logger.WithError(err).Debug("failed to cache search response")
	}
}

func orderClause(sortBy string) string {
	switch sortBy {
	case "price_asc":
		return "price asc"
	case "price_desc":
		return "price desc"
	case "rating":
		return "ratings desc"
	case "newest":
		return "created_at desc"
	default:
		return "created_at desc"
	}
}
