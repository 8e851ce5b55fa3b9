package application

import (
	"context"
	goerrors "errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/wms-platform/warehouse-core/internal/domain"
	"github.com/wms-platform/warehouse-core/pkg/cloudevents"
	"github.com/wms-platform/warehouse-core/pkg/errors"
	"github.com/wms-platform/warehouse-core/pkg/kafka"
	"github.com/wms-platform/warehouse-core/pkg/logging"
	"github.com/wms-platform/warehouse-core/pkg/metrics"
	"github.com/wms-platform/warehouse-core/pkg/outbox"
)

// BatchProcessorService turns large pick requests into optimized, trackable
// work. It groups items by zone, routes each group and materializes one
// picking task per resulting path.
type BatchProcessorService struct {
	optimizer    *PathOptimizerService
	tasks        domain.TaskRepository
	locations    domain.LocationRepository
	inventory    domain.InventoryResolver
	producer     outbox.EventPublisher
	eventFactory *cloudevents.EventFactory
	logger       *logging.Logger
	metrics      *metrics.Metrics
}

// NewBatchProcessorService creates a new BatchProcessorService
func NewBatchProcessorService(
	optimizer *PathOptimizerService,
	tasks domain.TaskRepository,
	locations domain.LocationRepository,
	inventory domain.InventoryResolver,
	producer outbox.EventPublisher,
	eventFactory *cloudevents.EventFactory,
	logger *logging.Logger,
	m *metrics.Metrics,
) *BatchProcessorService {
	return &BatchProcessorService{
		optimizer:    optimizer,
		tasks:        tasks,
		locations:    locations,
		inventory:    inventory,
		producer:     producer,
		eventFactory: eventFactory,
		logger:       logger,
		metrics:      m,
	}
}

// ProcessBatch groups the requested items by zone, optimizes one route per
// zone and creates a pending picking task for each route.
func (s *BatchProcessorService) ProcessBatch(ctx context.Context, cmd ProcessBatchCommand) (*BatchResultDTO, error) {
	if len(cmd.ItemIDs) == 0 {
		return nil, errors.ErrValidation("at least one item is required")
	}

	itemsByZone, resolvedCount, err := s.groupItemsByZone(ctx, cmd.ItemIDs)
	if err != nil {
		return nil, err
	}
	if len(itemsByZone) == 0 {
		return nil, errors.ErrValidation("none of the requested items could be resolved to a location")
	}

	result := s.newBatchResult(cmd.WarehouseID)
	result.ItemCount = resolvedCount
	result.ZoneCount = len(itemsByZone)

	for zoneID, zoneItems := range itemsByZone {
		path, err := s.optimizer.OptimizeZonePath(ctx, zoneID, zoneItems)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping zone in batch", "zoneId", zoneID, "items", len(zoneItems))
			continue
		}

		taskID, err := s.createPickingTask(ctx, cmd.WarehouseID, path)
		if err != nil {
			return nil, err
		}

		s.accumulate(result, path, taskID)
	}

	s.finishBatch(ctx, result, "items")
	return result, nil
}

// OptimizeMultiOrderFulfillment routes each order independently and creates
// one picking task per order path.
func (s *BatchProcessorService) OptimizeMultiOrderFulfillment(ctx context.Context, cmd MultiOrderFulfillmentCommand) (*BatchResultDTO, error) {
	if len(cmd.OrderIDs) == 0 {
		return nil, errors.ErrValidation("at least one order is required")
	}

	paths, err := s.optimizer.OptimizeOrderPaths(ctx, cmd.WarehouseID, cmd.OrderIDs)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.ErrValidation("none of the requested orders could be routed")
	}

	result := s.newBatchResult(cmd.WarehouseID)

	zones := make(map[string]bool)
	for _, path := range paths {
		taskID, err := s.createPickingTask(ctx, cmd.WarehouseID, path)
		if err != nil {
			return nil, err
		}

		s.accumulate(result, path, taskID)
		result.ItemCount += path.ItemCount()
		if path.ZoneID != "" {
			zones[path.ZoneID] = true
		}
	}
	result.ZoneCount = len(zones)

	s.finishBatch(ctx, result, "orders")
	return result, nil
}

// CreateZoneTaskBatches chunks a zone's pending picking tasks into batches
// and re-optimizes the walking route for each chunk. No new tasks are
// created; each chunk's tasks are re-pointed at the chunk's path and the
// result reports which task ids landed in which batch.
func (s *BatchProcessorService) CreateZoneTaskBatches(ctx context.Context, cmd ZoneTaskBatchesCommand) (*BatchResultDTO, error) {
	if cmd.MaxTasksPerBatch <= 0 {
		return nil, errors.ErrValidation("maxTasksPerBatch must be positive")
	}

	pending, err := s.tasks.FindPendingByZone(ctx, cmd.WarehouseID, cmd.ZoneID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load pending zone tasks", "zoneId", cmd.ZoneID)
		return nil, fmt.Errorf("failed to load pending zone tasks: %w", err)
	}

	result := s.newBatchResult(cmd.WarehouseID)
	result.ZoneID = cmd.ZoneID

	for start := 0; start < len(pending); start += cmd.MaxTasksPerBatch {
		end := start + cmd.MaxTasksPerBatch
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]

		locationIDs := make([]string, 0, len(chunk))
		for _, task := range chunk {
			if task.LocationID != "" {
				locationIDs = append(locationIDs, task.LocationID)
			}
		}
		if len(locationIDs) == 0 {
			s.logger.Warn("Skipping task batch without locations", "zoneId", cmd.ZoneID, "tasks", len(chunk))
			continue
		}

		path, err := s.optimizer.OptimizeLocationSet(ctx, cmd.ZoneID, locationIDs)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping task batch", "zoneId", cmd.ZoneID, "tasks", len(chunk))
			continue
		}

		batchTaskIDs, err := s.linkTasksToPath(ctx, chunk, path.PathID)
		if err != nil {
			return nil, err
		}

		result.ItemCount += len(chunk)
		result.TaskBatches = append(result.TaskBatches, TaskBatchDTO{
			PathID:  path.PathID,
			TaskIDs: batchTaskIDs,
		})
		s.accumulate(result, path, "")
	}

	if result.BatchCount > 0 {
		result.ZoneCount = 1
	}

	s.finishBatch(ctx, result, "zone-tasks")
	return result, nil
}

// linkTasksToPath re-points each task in a chunk at the path that now covers
// it. Tasks claimed by a concurrent writer are logged and left out of the
// batch rather than failing the whole run.
func (s *BatchProcessorService) linkTasksToPath(ctx context.Context, chunk []*domain.Task, pathID string) ([]string, error) {
	taskIDs := make([]string, 0, len(chunk))
	for _, task := range chunk {
		task.ReferenceID = pathID
		task.ReferenceType = domain.ReferenceTypePickingPath

		if err := s.tasks.Save(ctx, task); err != nil {
			if goerrors.Is(err, domain.ErrConcurrentModification) {
				s.logger.Warn("Skipping contested task in zone batch",
					"taskId", task.TaskID, "pathId", pathID)
				continue
			}
			s.logger.WithError(err).Error("Failed to link task to batch path",
				"taskId", task.TaskID, "pathId", pathID)
			return nil, fmt.Errorf("failed to link task to batch path: %w", err)
		}
		taskIDs = append(taskIDs, task.TaskID)
	}
	return taskIDs, nil
}

// groupItemsByZone resolves each item to its location's zone. Unresolvable
// items are logged and dropped.
func (s *BatchProcessorService) groupItemsByZone(ctx context.Context, itemIDs []string) (map[string][]string, int, error) {
	itemsByZone := make(map[string][]string)
	resolved := 0

	for _, itemID := range itemIDs {
		inv, err := s.inventory.Resolve(ctx, itemID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to resolve item %s: %w", itemID, err)
		}
		if inv == nil || inv.LocationID == "" {
			s.logger.Warn("Skipping unresolvable item", "itemId", itemID)
			continue
		}

		loc, err := s.locations.FindByID(ctx, inv.LocationID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load location %s: %w", inv.LocationID, err)
		}
		if loc == nil {
			s.logger.Warn("Skipping item at unknown location", "itemId", itemID, "locationId", inv.LocationID)
			continue
		}

		itemsByZone[loc.ZoneID] = append(itemsByZone[loc.ZoneID], itemID)
		resolved++
	}

	return itemsByZone, resolved, nil
}

func (s *BatchProcessorService) createPickingTask(ctx context.Context, warehouseID string, path *domain.PickingPath) (string, error) {
	task := domain.NewTask(warehouseID, domain.TaskTypePicking, domain.PriorityMedium)
	task.ZoneID = path.ZoneID
	task.ReferenceID = path.PathID
	task.ReferenceType = domain.ReferenceTypePickingPath
	task.EstimatedDurationMinutes = int(math.Ceil(path.EstimatedTimeMinutes))

	if err := s.tasks.Save(ctx, task); err != nil {
		s.logger.WithError(err).Error("Failed to save batch task", "pathId", path.PathID)
		return "", fmt.Errorf("failed to save batch task: %w", err)
	}

	// Events are saved to outbox by repository in transaction

	if s.metrics != nil {
		s.metrics.RecordTaskCreated(string(task.Type))
	}

	return task.TaskID, nil
}

func (s *BatchProcessorService) newBatchResult(warehouseID string) *BatchResultDTO {
	return &BatchResultDTO{
		BatchID:        uuid.New().String(),
		WarehouseID:    warehouseID,
		PickingPaths:   []PickingPathDTO{},
		CreatedTaskIDs: []string{},
		CreatedAt:      time.Now().UTC(),
	}
}

func (s *BatchProcessorService) accumulate(result *BatchResultDTO, path *domain.PickingPath, taskID string) {
	result.BatchCount++
	result.PickingPaths = append(result.PickingPaths, *ToPickingPathDTO(path))
	result.TotalDistance += path.TotalDistance
	result.TotalEstimatedTimeMinutes += path.EstimatedTimeMinutes
	if taskID != "" {
		result.CreatedTaskIDs = append(result.CreatedTaskIDs, taskID)
	}
}

func (s *BatchProcessorService) finishBatch(ctx context.Context, result *BatchResultDTO, kind string) {
	if s.metrics != nil {
		s.metrics.RecordBatchProcessed(kind)
	}

	s.logger.Info("Batch processed",
		"batchId", result.BatchID,
		"warehouseId", result.WarehouseID,
		"itemCount", result.ItemCount,
		"zoneCount", result.ZoneCount,
		"paths", len(result.PickingPaths),
		"createdTasks", len(result.CreatedTaskIDs))

	if s.producer == nil || s.eventFactory == nil {
		return
	}

	event := s.eventFactory.CreateBatchProcessedEvent(ctx, result.BatchID, result.WarehouseID,
		result.ItemCount, result.ZoneCount, result.CreatedTaskIDs,
		result.TotalDistance, result.TotalEstimatedTimeMinutes)

	if err := s.producer.PublishEvent(ctx, kafka.Topics.BatchEvents, event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish batch processed event", "batchId", result.BatchID)
	}
}
