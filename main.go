package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"smart-trolley-backend/audit"
	"smart-trolley-backend/controllers"
	"smart-trolley-backend/database"
	"smart-trolley-backend/logger"
	"smart-trolley-backend/repository"
	"smart-trolley-backend/routes"
	"smart-trolley-backend/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// --- Stores ---
	db, err := database.Connect(cfg.Postgres)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	if err := database.Seed(db); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal("Redis connection failed", zap.Error(err))
	}

	auditLog := audit.NewFileLog(cfg.AuditLogPath, log)

	// --- Repositories ---
	productRepo := repository.NewGormProductRepository(db)
	saleRepo := repository.NewGormSaleRepository(db)
	promoRepo := repository.NewGormPromotionRepository(db)
	settingsRepo := repository.NewGormSettingsRepository(db)
	cartRepo := repository.NewRedisCartRepository(redisClient, cfg.TrolleyID)

	// --- Services ---
	heartbeat := services.NewHeartbeatTracker(cfg.TrolleyID, cfg.CustomerLabel)
	cartService := services.NewCartService(cartRepo, productRepo, settingsRepo, heartbeat, log)
	catalogService := services.NewCatalogService(productRepo, cartService, log)
	checkoutService := services.NewCheckoutService(cartService, saleRepo, log)
	promotionService := services.NewPromotionService(promoRepo, settingsRepo, log)
	analyticsService := services.NewAnalyticsService(saleRepo, productRepo, auditLog, heartbeat, cfg.DemoBaseline, log)

	// --- HTTP ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(log))

	routes.Register(r,
		controllers.NewCartController(cartService, checkoutService),
		controllers.NewCatalogController(catalogService, auditLog),
		controllers.NewPromotionController(promotionService, auditLog),
		controllers.NewAdminController(analyticsService, checkoutService, cartService, heartbeat, auditLog),
		cfg.JWTSecret,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("Smart trolley backend running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Shutdown error", zap.Error(err))
	}
	log.Info("Server shutdown complete")
}
