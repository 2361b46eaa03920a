// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/ai"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// SetupRoutes wires all API routes with their services
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	// Shared collaborators
	aiClient := ai.NewClient(cfg, logger)
	sender := email.NewSender(cfg, logger)
	intentCreator := payment.NewIntentCreator(cfg)

	// Domain services
	userService := user.NewService(db, cfg)
	productService := product.NewService(db, redisClient, cfg, aiClient, aiClient, logger)
	reviewService := product.NewReviewService(db)
	inventoryService := inventory.NewService(db)
	cartService := cart.NewService(db, cfg)
	orderService := order.NewService(db, cfg, cartService, inventoryService, sender, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	reviewHandler := handlers.NewReviewHandler(reviewService, userService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(intentCreator)

	// Auth
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.RefreshToken)

		protected := authGroup.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/password", authHandler.ChangePassword)
		}
	}

	// Products and reviews
	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/search", productHandler.SearchProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/reviews", reviewHandler.GetReviews)

		authed := products.Group("")
		authed.Use(middleware.AuthMiddleware(cfg))
		{
			authed.PUT("/:id/reviews", reviewHandler.UpsertReview)
			authed.DELETE("/:id/reviews/:reviewId", reviewHandler.DeleteReview)
		}

		admin := products.Group("")
		admin.Use(middleware.AuthMiddleware(cfg))
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("", productHandler.CreateProduct)
			admin.PUT("/:id", productHandler.UpdateProduct)
			admin.DELETE("/:id", productHandler.DeleteProduct)
			admin.PUT("/:id/stock", inventoryHandler.AdjustStock)
			admin.GET("/:id/stock/movements", inventoryHandler.GetMovements)
		}
	}

	// Cart
	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.AuthMiddleware(cfg))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.PUT("/items/:id", cartHandler.UpdateCartItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
	}

	// Orders
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.POST("", orderHandler.PlaceOrder)
		orders.GET("", orderHandler.GetMyOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.PUT("/:id/status", middleware.AdminMiddleware(), orderHandler.UpdateStatus)
		orders.PUT("/:id/pay", middleware.AdminMiddleware(), orderHandler.MarkPaid)
		orders.DELETE("/:id", middleware.AdminMiddleware(), orderHandler.DeleteOrder)
	}

	// Admin order listing across all users
	adminOrders := rg.Group("/admin/orders")
	adminOrders.Use(middleware.AuthMiddleware(cfg))
	adminOrders.Use(middleware.AdminMiddleware())
	{
		adminOrders.GET("", orderHandler.ListOrders)
	}

	// Payment intents
	paymentGroup := rg.Group("/payment")
	paymentGroup.Use(middleware.AuthMiddleware(cfg))
	{
		paymentGroup.POST("/intent", paymentHandler.CreateIntent)
	}
}
