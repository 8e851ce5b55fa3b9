package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/warehouse-core/internal/application"
	mongoRepo "github.com/wms-platform/warehouse-core/internal/infrastructure/mongodb"
	"github.com/wms-platform/warehouse-core/pkg/cloudevents"
	"github.com/wms-platform/warehouse-core/pkg/kafka"
	"github.com/wms-platform/warehouse-core/pkg/logging"
	"github.com/wms-platform/warehouse-core/pkg/metrics"
	"github.com/wms-platform/warehouse-core/pkg/middleware"
	"github.com/wms-platform/warehouse-core/pkg/mongodb"
	"github.com/wms-platform/warehouse-core/pkg/outbox"
	"github.com/wms-platform/warehouse-core/pkg/tracing"
)

const topologyCacheTTL = 30 * time.Second

func main() {
	// Setup enhanced logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting warehouse-core API")

	// Load configuration
	config := loadConfig()
	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		// Continue without tracing - don't exit
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
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB with instrumentation
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	instrumentedMongo := mongodb.NewInstrumentedClient(mongoClient, m, logger)
	defer instrumentedMongo.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize Kafka producer with instrumentation and circuit breaker
	producer := kafka.NewProductionProducer(config.Kafka, m, logger)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Initialize CloudEvents factory
	eventFactory := cloudevents.NewEventFactory("/warehouse-core")

	// Initialize repositories with instrumented client and event factory
	db := instrumentedMongo.Database()
	taskRepo := mongoRepo.NewTaskRepository(db, eventFactory)
	locationRepo := mongoRepo.NewCachedLocationRepository(mongoRepo.NewLocationRepository(db), topologyCacheTTL)
	zoneRepo := mongoRepo.NewCachedZoneRepository(mongoRepo.NewZoneRepository(db), topologyCacheTTL)
	staffRepo := mongoRepo.NewStaffRepository(db)
	inventoryResolver := mongoRepo.NewInventoryResolver(db)
	orderRepo := mongoRepo.NewOrderRepository(db)

	// Initialize and start outbox publisher
	outboxPublisher := outbox.NewPublisher(
		taskRepo.GetOutboxRepository(),
		producer,
		logger,
		m,
		&outbox.PublisherConfig{
			PollInterval: 1 * time.Second,
			BatchSize:    100,
		},
	)
	if err := outboxPublisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()
	logger.Info("Outbox publisher started")

	// Initialize application services
	taskService := application.NewTaskApplicationService(taskRepo, staffRepo, logger, m)
	assignmentService := application.NewAssignmentService(taskRepo, staffRepo, logger, m)
	optimizerService := application.NewPathOptimizerService(
		locationRepo,
		zoneRepo,
		inventoryResolver,
		orderRepo,
		producer,
		eventFactory,
		logger,
		m,
	)
	batchService := application.NewBatchProcessorService(
		optimizerService,
		taskRepo,
		locationRepo,
		inventoryResolver,
		producer,
		eventFactory,
		logger,
		m,
	)

	// Setup Gin router with middleware
	router := gin.New()

	// Apply standard middleware (includes recovery, request ID, correlation, logging, error handling)
	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)

	// Add metrics middleware
	router.Use(middleware.MetricsMiddleware(m))

	// Add tracing middleware
	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	// Handle 404 and 405 errors
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return instrumentedMongo.HealthCheck(ctx)
	}))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// API v1 routes
	apiV1 := router.Group("/api/v1")

	// Task lifecycle routes
	tasks := apiV1.Group("/tasks")
	{
		tasks.POST("", createTaskHandler(taskService, logger))
		tasks.GET("", listTasksHandler(taskService, logger))
		tasks.GET("/statistics", taskStatisticsHandler(taskService, logger))
		tasks.GET("/:taskId", getTaskHandler(taskService, logger))
		tasks.POST("/:taskId/assign", assignTaskHandler(taskService, logger))
		tasks.POST("/:taskId/start", startTaskHandler(taskService, logger))
		tasks.POST("/:taskId/complete", completeTaskHandler(taskService, logger))
		tasks.POST("/:taskId/cancel", cancelTaskHandler(taskService, logger))
		tasks.POST("/:taskId/hold", holdTaskHandler(taskService, logger))
		tasks.POST("/:taskId/resume", resumeTaskHandler(taskService, logger))
		tasks.POST("/:taskId/unassign", unassignTaskHandler(taskService, logger))
		tasks.PUT("/:taskId/priority", changePriorityHandler(taskService, logger))
	}

	// Auto-assignment routes
	assignments := apiV1.Group("/assignments")
	{
		assignments.POST("/auto", autoAssignHandler(assignmentService, logger))
	}

	// Path optimization routes
	optimize := apiV1.Group("/optimize")
	{
		optimize.POST("/warehouse", optimizeWarehouseHandler(optimizerService, logger))
		optimize.POST("/zone", optimizeZoneHandler(optimizerService, logger))
		optimize.POST("/orders", optimizeOrdersHandler(optimizerService, logger))
	}

	// Batch processing routes
	batches := apiV1.Group("/batches")
	{
		batches.POST("/process", processBatchHandler(batchService, logger))
		batches.POST("/orders", multiOrderFulfillmentHandler(batchService, logger))
		batches.POST("/zone-tasks", zoneTaskBatchesHandler(batchService, logger))
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}
