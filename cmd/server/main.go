package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sgp-service/config"
	"sgp-service/internal/api"
	"sgp-service/internal/broker"
	"sgp-service/internal/redisclient"
	"sgp-service/internal/service"
	"sgp-service/internal/store"
	"sgp-service/internal/util"
	"sgp-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting sgp service")

	tp, err := util.InitTracer("sgp-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	cacheTTL := time.Duration(cfg.Business.CatalogCacheTTLSeconds) * time.Second

	orderService := service.NewOrderService(db, eventPublisher)
	customerService := service.NewCustomerService(db, redisClient, cfg.Business.DefaultCompanyID)
	productService := service.NewProductService(db, redisClient)
	inventoryService := service.NewInventoryService(db, eventPublisher)
	catalogService := service.NewCatalogService(db, redisClient, cacheTTL)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	reportConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
	reportWorker := worker.NewReportWorker(reportConsumer, catalogService)
	go func() {
		if err := reportWorker.Start(workerCtx); err != nil {
			log.Printf("Report worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(orderService, customerService, productService, inventoryService, catalogService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	reportWorker.Stop()

	log.Println("Server exited")
}
