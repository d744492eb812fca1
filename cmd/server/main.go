package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront-backend-go/internal/api"
	"storefront-backend-go/internal/config"
	"storefront-backend-go/internal/core"
	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/middleware"
	"storefront-backend-go/internal/notify"
	"storefront-backend-go/internal/shipping"
	"storefront-backend-go/pkg/cache"
	"storefront-backend-go/pkg/messagequeue"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	if !strings.EqualFold(os.Getenv("GIN_MODE"), "release") {
		_ = godotenv.Load()
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	var zapLogger *zap.Logger
	if appConfig.IsRelease() {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Application configuration loaded successfully.")

	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig, zapLogger); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
	}
	defer db.CloseFirestore()

	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil || firebaseAuthClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firebase clients are nil after initialization. Application cannot start.")
	}

	// --- Repositories ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	roleRepo := db.NewFirestoreRoleRepository(firestoreClient)
	auditRepo := db.NewFirestoreAuditRepository(firestoreClient)
	taxonRepo := db.NewFirestoreTaxonRepository(firestoreClient)
	subcategoryRepo := db.NewFirestoreSubcategoryRepository(firestoreClient)
	productRepo := db.NewFirestoreProductRepository(firestoreClient)
	cartRepo := db.NewFirestoreCartRepository(firestoreClient)
	addressRepo := db.NewFirestoreAddressRepository(firestoreClient)
	orderRepo := db.NewFirestoreOrderRepository(firestoreClient)
	slugRegistry := db.NewFirestoreSlugRegistry(firestoreClient)

	// --- Optional infrastructure ---
	var cacheBackend cache.Cache = cache.Noop{}
	if appConfig.RedisAddress != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddress,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
			Prefix:   "storefront:",
		}, zapLogger)
		if err != nil {
			zapLogger.Warn("Redis unavailable, running without cache", zap.Error(err))
		} else {
			defer redisCache.Close()
			cacheBackend = redisCache
		}
	}

	var publisher core.EventPublisher
	mq, err := messagequeue.New(initCtx, appConfig.MQDriver, brokerURL(appConfig), zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to message broker", zap.Error(err))
	}
	if mq != nil {
		defer mq.Close()
		publisher = notify.NewQueuePublisher(mq, appConfig.OrderEventsQueue, zapLogger)
	} else {
		zapLogger.Warn("MQ_DRIVER not set; order.created events will not be published")
	}

	// --- Services ---
	pricing := core.NewPricingRules(appConfig.FreeShippingThreshold, appConfig.ShippingFlatFee, appConfig.TaxFixed)
	auditService := core.NewAuditService(auditRepo)
	userService := core.NewUserService(userRepo, roleRepo, appConfig.DefaultRole, zapLogger)
	taxonomyService := core.NewTaxonomyService(taxonRepo, subcategoryRepo, slugRegistry, auditService, cacheBackend, appConfig.CacheTTL, zapLogger)
	productService := core.NewProductService(productRepo, taxonRepo, subcategoryRepo, slugRegistry, auditService, cacheBackend, appConfig.CacheTTL, zapLogger)
	cartService := core.NewCartService(cartRepo, productRepo, pricing, zapLogger)
	addressService := core.NewAddressService(addressRepo, zapLogger)
	carrier := shipping.NewClient(appConfig.CarrierAPIURL, appConfig.CarrierAPIKey, appConfig.CarrierTimeout, zapLogger)
	shippingService := core.NewShippingService(carrier, addressService, cartRepo, appConfig.OriginPostalCode, zapLogger)
	orderService := core.NewOrderService(orderRepo, cartRepo, productRepo, addressService, pricing, publisher, auditService, cacheBackend, zapLogger)

	if roles, err := config.LoadRoles(appConfig.RolesFile); err != nil {
		zapLogger.Warn("Skipping role seeding", zap.Error(err))
	} else if created, err := userService.SeedRoles(initCtx, roles); err != nil {
		zapLogger.Error("Failed to seed roles", zap.Error(err))
	} else {
		zapLogger.Info("Roles seeded", zap.Int("created", created), zap.Int("defined", len(roles)))
	}

	// --- HTTP ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	api.SetupRoutes(router, appConfig, zapLogger, firebaseAuthClient, api.Services{
		Users:    userService,
		Taxonomy: taxonomyService,
		Products: productService,
		Cart:     cartService,
		Address:  addressService,
		Shipping: shippingService,
		Orders:   orderService,
	})

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}

func brokerURL(cfg *config.Config) string {
	if cfg.MQDriver == messagequeue.DriverNATS {
		return cfg.NATSURL
	}
	return cfg.RabbitMQURL
}
