package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mnavarro-dev/pedidos-service/config"
	orderH "github.com/mnavarro-dev/pedidos-service/internal/order/handler"
	orderRepoPkg "github.com/mnavarro-dev/pedidos-service/internal/order/repository"
	orderUCPkg "github.com/mnavarro-dev/pedidos-service/internal/order/usecase"
	"github.com/mnavarro-dev/pedidos-service/internal/platform/broker"
	"github.com/mnavarro-dev/pedidos-service/internal/platform/cache"
	"github.com/mnavarro-dev/pedidos-service/internal/platform/database"
	"github.com/mnavarro-dev/pedidos-service/internal/platform/logger"
	stockH "github.com/mnavarro-dev/pedidos-service/internal/stock/handler"
	stockRepoPkg "github.com/mnavarro-dev/pedidos-service/internal/stock/repository"
	stockUCPkg "github.com/mnavarro-dev/pedidos-service/internal/stock/usecase"

	"github.com/mnavarro-dev/pedidos-service/internal/order"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := database.NewMySQL(&cfg.MySQL)
	if err != nil {
		appLogger.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("connected to MySQL database", zap.String("db_name", cfg.MySQL.DBName))

	// 4. Redis (optional: order numbering falls back to the count-based
	// sequence when absent)
	var seq order.Sequencer
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewClient(&cfg.Redis)
		if err != nil {
			appLogger.Warn("could not connect to Redis, order numbering will use the fallback path", zap.Error(err))
		} else {
			defer redisClient.Close()
			seq = redisClient
			appLogger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 5. Kafka producer (optional, best-effort events)
	var publisher order.EventPublisher
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(&cfg.Kafka)
		defer producer.Close()
		publisher = producer
		appLogger.Info("kafka producer ready",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
	}

	// 6. Repositories
	stockRepo := stockRepoPkg.NewMySQLRepository(db.DB)
	orderRepo := orderRepoPkg.NewMySQLRepository(db.DB)

	// 7. UseCases
	stockUC := stockUCPkg.NewStockUseCase(stockRepo, db, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, stockUC, db, seq, publisher, appLogger)

	// 8. HTTP transport
	if cfg.Server.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	orderH.NewOrderHandler(orderUC, appLogger).Register(v1)
	stockH.NewStockHandler(stockUC, appLogger).Register(v1)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPPort,
		Handler: router,
	}

	go func() {
		appLogger.Info("starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("server stopped")
}
