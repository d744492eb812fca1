package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend-go/internal/config"
	"storefront-backend-go/internal/core"
	"storefront-backend-go/internal/middleware"
	"storefront-backend-go/internal/models"
)

// Services bundles the core services the HTTP layer depends on.
type Services struct {
	Users    core.UserService
	Taxonomy core.TaxonomyService
	Products core.ProductService
	Cart     core.CartService
	Address  core.AddressService
	Shipping core.ShippingService
	Orders   core.OrderService
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (logging, recovery, CORS) is expected to be applied to router by the caller.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	issuer SessionIssuer,
	services Services,
) {
	if issuer == nil {
		logger.Fatal("CRITICAL_SETUP_ERROR: Firebase Auth client is not initialized; routes will not be set up.")
	}
	authMW := middleware.NewAuthMiddleware(issuer, appConfig.SessionCookieName, logger)
	can := func(perm string) gin.HandlerFunc {
		return middleware.RequirePermission(services.Users, perm, logger)
	}

	sessionHandler := NewSessionHandler(issuer, authMW, services.Users, SessionHandlerConfig{
		CookieName: appConfig.SessionCookieName,
		TTL:        appConfig.SessionTTL,
		Secure:     appConfig.CookieSecure,
	}, logger)
	categoryHandler := NewTaxonomyHandler(models.KindCategory, services.Taxonomy, logger)
	productHandler := NewProductHandler(services.Products, logger)
	cartHandler := NewCartHandler(services.Cart, logger)
	addressHandler := NewAddressHandler(services.Address, logger)
	shippingHandler := NewShippingHandler(services.Shipping, logger)
	orderHandler := NewOrderHandler(services.Orders, logger)

	apiV1 := router.Group("/api/v1")
	{
		sessionGroup := apiV1.Group("/session")
		{
			sessionGroup.POST("/login", sessionHandler.Login)
			sessionGroup.GET("/verify", sessionHandler.Verify)
			sessionGroup.POST("/logout", sessionHandler.Logout)
		}

		// Taxonomy administration. Brands and types share the category routes minus subcategories.
		for _, kind := range []models.TaxonKind{models.KindCategory, models.KindBrand, models.KindType} {
			h := categoryHandler
			if kind != models.KindCategory {
				h = NewTaxonomyHandler(kind, services.Taxonomy, logger)
			}
			group := apiV1.Group("/"+string(kind), authMW.VerifyToken())
			group.POST("", can(core.PermCreate), h.Create)
			group.GET("", can(core.PermRead), h.List)
			group.GET("/:id", can(core.PermRead), h.Get)
			group.GET("/url/:url", can(core.PermRead), h.GetByURL)
			group.PUT("/:id", can(core.PermUpdate), h.Update)
		}
		subcategories := apiV1.Group("/categories/:id/subcategories", authMW.VerifyToken())
		{
			subcategories.POST("", can(core.PermCreate), categoryHandler.CreateSubcategory)
			subcategories.GET("", can(core.PermRead), categoryHandler.ListSubcategories)
			subcategories.GET("/:subId", can(core.PermRead), categoryHandler.GetSubcategory)
			subcategories.PUT("/:subId", can(core.PermUpdate), categoryHandler.UpdateSubcategory)
		}

		products := apiV1.Group("/products", authMW.VerifyToken())
		{
			products.POST("", can(core.PermCreate), productHandler.CreateProduct)
			products.PUT("/:id", can(core.PermUpdate), productHandler.UpdateProduct)
			products.GET("/url/:url", can(core.PermRead), productHandler.GetProductByURL)
		}

		// Public storefront, no authentication.
		store := apiV1.Group("/store")
		{
			store.GET("/products", productHandler.ListStoreProducts)
			store.GET("/products/:url", productHandler.GetProductByURL)
			store.POST("/products/resolve", productHandler.ResolveProducts)
			store.GET("/categories", categoryHandler.PublicCategories)
		}

		cart := apiV1.Group("/cart", authMW.VerifyToken())
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("", cartHandler.AddToCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/merge", cartHandler.MergeCart)
			cart.PUT("/:uniqueID", cartHandler.SetQuantity)
			cart.DELETE("/:uniqueID", cartHandler.RemoveFromCart)
		}

		favorites := apiV1.Group("/favorites", authMW.VerifyToken())
		{
			favorites.GET("", cartHandler.ListFavorites)
			favorites.POST("", cartHandler.AddFavorite)
			favorites.POST("/merge", cartHandler.MergeFavorites)
			favorites.DELETE("/:uniqueID", cartHandler.RemoveFavorite)
		}

		addresses := apiV1.Group("/addresses", authMW.VerifyToken())
		{
			addresses.GET("", addressHandler.ListAddresses)
			addresses.POST("", addressHandler.CreateAddress)
			addresses.PUT("/:id", addressHandler.UpdateAddress)
			addresses.DELETE("/:id", addressHandler.DeleteAddress)
		}

		apiV1.POST("/shipping/quote", authMW.VerifyToken(), shippingHandler.Quote)

		orders := apiV1.Group("/orders", authMW.VerifyToken())
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListMyOrders)
			orders.GET("/:id", orderHandler.GetMyOrder)
		}

		adminOrders := apiV1.Group("/admin/orders", authMW.VerifyToken())
		{
			adminOrders.GET("", can(core.PermOrdersRead), orderHandler.ListOrders)
			adminOrders.GET("/:id", can(core.PermOrdersRead), orderHandler.GetOrder)
			adminOrders.PUT("/:id/status", can(core.PermOrdersUpdate), orderHandler.UpdateOrderStatus)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Storefront backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
