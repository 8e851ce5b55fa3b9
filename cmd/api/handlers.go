package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/warehouse-core/internal/application"
	"github.com/wms-platform/warehouse-core/internal/domain"
	"github.com/wms-platform/warehouse-core/pkg/errors"
	"github.com/wms-platform/warehouse-core/pkg/kafka"
	"github.com/wms-platform/warehouse-core/pkg/logging"
	"github.com/wms-platform/warehouse-core/pkg/middleware"
	"github.com/wms-platform/warehouse-core/pkg/mongodb"
)

const serviceName = "warehouse-core"

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8010"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "warehouse_core_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ConsumerGroup: "warehouse-core",
			ClientID:      "warehouse-core",
			BatchSize:     100,
			BatchTimeout:  10 * time.Millisecond,
			RequiredAcks:  -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func respondWithError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		responder.RespondWithAppError(appErr)
	} else {
		responder.RespondInternalError(err)
	}
}

func createTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			WarehouseID              string     `json:"warehouseId" binding:"required"`
			ZoneID                   string     `json:"zoneId"`
			LocationID               string     `json:"locationId"`
			Type                     string     `json:"type" binding:"required"`
			Priority                 int        `json:"priority"`
			Notes                    string     `json:"notes"`
			EstimatedDurationMinutes int        `json:"estimatedDurationMinutes"`
			DueAt                    *time.Time `json:"dueAt"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"warehouse.id": req.WarehouseID,
			"task.type":    req.Type,
		})

		cmd := application.CreateTaskCommand{
			WarehouseID:              req.WarehouseID,
			ZoneID:                   req.ZoneID,
			LocationID:               req.LocationID,
			Type:                     domain.TaskType(req.Type),
			Priority:                 req.Priority,
			Notes:                    req.Notes,
			EstimatedDurationMinutes: req.EstimatedDurationMinutes,
			DueAt:                    req.DueAt,
		}

		task, err := service.CreateTask(c.Request.Context(), cmd)
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, task)
	}
}

func getTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		taskID := c.Param("taskId")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"task.id": taskID,
		})

		task, err := service.GetTask(c.Request.Context(), application.GetTaskQuery{TaskID: taskID})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func listTasksHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		query := application.ListTasksQuery{
			WarehouseID: c.Query("warehouseId"),
			ZoneID:      c.Query("zoneId"),
			Status:      c.Query("status"),
			AssignedTo:  c.Query("assignedTo"),
			Type:        c.Query("type"),
			Limit:       limit,
			Offset:      offset,
		}
		if dueBefore := c.Query("dueBefore"); dueBefore != "" {
			parsed, err := time.Parse(time.RFC3339, dueBefore)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "dueBefore must be RFC3339"})
				return
			}
			query.DueBefore = &parsed
		}

		tasks, err := service.ListTasks(c.Request.Context(), query)
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
	}
}

func taskStatisticsHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		warehouseID := c.Query("warehouseId")
		if warehouseID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "warehouseId is required"})
			return
		}

		stats, err := service.GetStatistics(c.Request.Context(), application.TaskStatisticsQuery{WarehouseID: warehouseID})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

func assignTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			StaffID string `json:"staffId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		taskID := c.Param("taskId")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"task.id":  taskID,
			"staff.id": req.StaffID,
		})

		task, err := service.AssignTask(c.Request.Context(), application.AssignTaskCommand{
			TaskID:  taskID,
			StaffID: req.StaffID,
		})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func startTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		task, err := service.StartTask(c.Request.Context(), application.StartTaskCommand{TaskID: c.Param("taskId")})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func completeTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			ActualDurationMinutes *int `json:"actualDurationMinutes"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		task, err := service.CompleteTask(c.Request.Context(), application.CompleteTaskCommand{
			TaskID:                c.Param("taskId"),
			ActualDurationMinutes: req.ActualDurationMinutes,
		})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func cancelTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Reason string `json:"reason" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		task, err := service.CancelTask(c.Request.Context(), application.CancelTaskCommand{
			TaskID: c.Param("taskId"),
			Reason: req.Reason,
		})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func holdTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Reason string `json:"reason"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		task, err := service.HoldTask(c.Request.Context(), application.HoldTaskCommand{
			TaskID: c.Param("taskId"),
			Reason: req.Reason,
		})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func resumeTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		task, err := service.ResumeTask(c.Request.Context(), application.ResumeTaskCommand{TaskID: c.Param("taskId")})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func unassignTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		task, err := service.UnassignTask(c.Request.Context(), application.UnassignTaskCommand{TaskID: c.Param("taskId")})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func changePriorityHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Priority int `json:"priority" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		task, err := service.ChangePriority(c.Request.Context(), application.ChangePriorityCommand{
			TaskID:   c.Param("taskId"),
			Priority: req.Priority,
		})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func autoAssignHandler(service *application.AssignmentService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			WarehouseID    string `json:"warehouseId" binding:"required"`
			MaxAssignments int    `json:"maxAssignments" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"warehouse.id": req.WarehouseID,
		})

		result, err := service.AutoAssign(c.Request.Context(), application.AutoAssignCommand{
			WarehouseID:    req.WarehouseID,
			MaxAssignments: req.MaxAssignments,
		})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func optimizeWarehouseHandler(service *application.PathOptimizerService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			WarehouseID string   `json:"warehouseId" binding:"required"`
			ItemIDs     []string `json:"itemIds" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"warehouse.id": req.WarehouseID,
			"item.count":   len(req.ItemIDs),
		})

		path, err := service.OptimizeForWarehouse(c.Request.Context(), application.OptimizeWarehouseCommand{
			WarehouseID: req.WarehouseID,
			ItemIDs:     req.ItemIDs,
		})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, path)
	}
}

func optimizeZoneHandler(service *application.PathOptimizerService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			ZoneID  string   `json:"zoneId" binding:"required"`
			ItemIDs []string `json:"itemIds" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"zone.id":    req.ZoneID,
			"item.count": len(req.ItemIDs),
		})

		path, err := service.OptimizeForZone(c.Request.Context(), application.OptimizeZoneCommand{
			ZoneID:  req.ZoneID,
			ItemIDs: req.ItemIDs,
		})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, path)
	}
}

func optimizeOrdersHandler(service *application.PathOptimizerService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			WarehouseID string   `json:"warehouseId" binding:"required"`
			OrderIDs    []string `json:"orderIds" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"warehouse.id": req.WarehouseID,
			"order.count":  len(req.OrderIDs),
		})

		paths, err := service.OptimizeBatchForOrders(c.Request.Context(), application.OptimizeOrdersCommand{
			WarehouseID: req.WarehouseID,
			OrderIDs:    req.OrderIDs,
		})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"paths": paths, "count": len(paths)})
	}
}

func processBatchHandler(service *application.BatchProcessorService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			WarehouseID string   `json:"warehouseId" binding:"required"`
			ItemIDs     []string `json:"itemIds" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"warehouse.id": req.WarehouseID,
			"item.count":   len(req.ItemIDs),
		})

		result, err := service.ProcessBatch(c.Request.Context(), application.ProcessBatchCommand{
			WarehouseID: req.WarehouseID,
			ItemIDs:     req.ItemIDs,
		})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

func multiOrderFulfillmentHandler(service *application.BatchProcessorService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			WarehouseID string   `json:"warehouseId" binding:"required"`
			OrderIDs    []string `json:"orderIds" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"warehouse.id": req.WarehouseID,
			"order.count":  len(req.OrderIDs),
		})

		result, err := service.OptimizeMultiOrderFulfillment(c.Request.Context(), application.MultiOrderFulfillmentCommand{
			WarehouseID: req.WarehouseID,
			OrderIDs:    req.OrderIDs,
		})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

func zoneTaskBatchesHandler(service *application.BatchProcessorService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			WarehouseID      string `json:"warehouseId" binding:"required"`
			ZoneID           string `json:"zoneId" binding:"required"`
			MaxTasksPerBatch int    `json:"maxTasksPerBatch" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"warehouse.id": req.WarehouseID,
			"zone.id":      req.ZoneID,
		})

		result, err := service.CreateZoneTaskBatches(c.Request.Context(), application.ZoneTaskBatchesCommand{
			WarehouseID:      req.WarehouseID,
			ZoneID:           req.ZoneID,
			MaxTasksPerBatch: req.MaxTasksPerBatch,
		})
		if err != nil {
			respondWithError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
