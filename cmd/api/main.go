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
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/procure-match/reconciliation-service/internal/api/handlers"
	"github.com/procure-match/reconciliation-service/internal/application"
	"github.com/procure-match/reconciliation-service/internal/domain"
	"github.com/procure-match/reconciliation-service/internal/infrastructure/messaging"
	mongoRepo "github.com/procure-match/reconciliation-service/internal/infrastructure/mongodb"
	"github.com/procure-match/reconciliation-service/pkg/kafka"
	"github.com/procure-match/reconciliation-service/pkg/logging"
	"github.com/procure-match/reconciliation-service/pkg/metrics"
	"github.com/procure-match/reconciliation-service/pkg/middleware"
	"github.com/procure-match/reconciliation-service/pkg/mongodb"
	"github.com/procure-match/reconciliation-service/pkg/tracing"
)

const serviceName = "reconciliation-service"

type instrumentedMongoClient interface {
	Database() *mongo.Database
	Close(context.Context) error
	HealthCheck(context.Context) error
}

type kafkaProducer interface {
	Close() error
}

var newInstrumentedMongoClient = func(ctx context.Context, cfg *mongodb.Config, m *metrics.Metrics, logger *logging.Logger) (instrumentedMongoClient, error) {
	client, err := mongodb.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return mongodb.NewInstrumentedClient(client, m, logger), nil
}

var newKafkaProducer = func(cfg *kafka.Config) kafkaProducer {
	return kafka.NewProducer(cfg)
}

var newDecisionPublisher = func(producer kafkaProducer, m *metrics.Metrics, logger *logging.Logger) application.DecisionEventPublisher {
	return messaging.NewDecisionPublisher(producer.(*kafka.Producer), m, logger)
}

var newPurchaseOrderRepository = func(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) domain.PurchaseOrderRepository {
	return mongoRepo.NewPurchaseOrderRepository(db, m, logger)
}

var newInvoiceRepository = func(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) domain.InvoiceRepository {
	return mongoRepo.NewInvoiceRepository(db, m, logger)
}

var newGoodsReceiptRepository = func(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) domain.GoodsReceiptRepository {
	return mongoRepo.NewGoodsReceiptRepository(db, m, logger)
}

var newDecisionRepository = func(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) domain.DecisionRepository {
	return mongoRepo.NewDecisionRepository(db, m, logger)
}

var newReconciliationService = application.NewReconciliationService

var newMetrics = metrics.New

var initTracing = tracing.Initialize

var startHTTPServer = func(srv *http.Server) error {
	return srv.ListenAndServe()
}

func main() {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	if err := run(context.Background(), signalCh); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, signalCh <-chan os.Signal) error {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting reconciliation-service API")

	config := loadConfig()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := initTracing(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := newMetrics(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB with instrumentation
	instrumentedMongo, err := newInstrumentedMongoClient(ctx, config.MongoDB, m, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		return err
	}
	defer instrumentedMongo.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize Kafka producer and decision audit publisher
	producer := newKafkaProducer(config.Kafka)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	decisionPublisher := newDecisionPublisher(producer, m, logger)

	// Initialize repositories
	db := instrumentedMongo.Database()
	poRepo := newPurchaseOrderRepository(db, m, logger)
	invoiceRepo := newInvoiceRepository(db, m, logger)
	grnRepo := newGoodsReceiptRepository(db, m, logger)
	decisionRepo := newDecisionRepository(db, m, logger)

	// Initialize application service
	reconciliationService := newReconciliationService(
		poRepo,
		invoiceRepo,
		grnRepo,
		decisionRepo,
		decisionPublisher,
		m,
		logger,
		config.DecisionUser,
	)

	// Initialize handlers
	reconciliationHandler := handlers.NewReconciliationHandler(reconciliationService, logger)
	documentsHandler := handlers.NewDocumentsHandler(reconciliationService, logger)

	// Setup Gin router with middleware
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)

	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return instrumentedMongo.HealthCheck(ctx)
	}))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// API routes
	api := router.Group("/api")
	{
		api.GET("/reconciliation", reconciliationHandler.GetReconciliation)
		api.POST("/reconciliation/decision", reconciliationHandler.RecordDecision)

		api.GET("/purchase_orders", documentsHandler.ListPurchaseOrders)
		api.GET("/invoices", documentsHandler.ListInvoices)
		api.GET("/goods_receipts", documentsHandler.ListGoodsReceipts)
	}

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := startHTTPServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	<-signalCh
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
	return nil
}

// Config holds application configuration
type Config struct {
	ServerAddr   string
	DecisionUser string
	MongoDB      *mongodb.Config
	Kafka        *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8000"),
		DecisionUser: getEnv("DECISION_USER", "reviewer"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "ema"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
