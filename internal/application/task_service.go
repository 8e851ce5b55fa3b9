package application

import (
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/wms-platform/warehouse-core/internal/domain"
	"github.com/wms-platform/warehouse-core/pkg/errors"
	"github.com/wms-platform/warehouse-core/pkg/logging"
	"github.com/wms-platform/warehouse-core/pkg/metrics"
	"github.com/wms-platform/warehouse-core/pkg/resilience"
)

// TaskApplicationService handles task lifecycle use cases
type TaskApplicationService struct {
	tasks   domain.TaskRepository
	staff   domain.StaffRepository
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewTaskApplicationService creates a new TaskApplicationService
func NewTaskApplicationService(
	tasks domain.TaskRepository,
	staff domain.StaffRepository,
	logger *logging.Logger,
	m *metrics.Metrics,
) *TaskApplicationService {
	return &TaskApplicationService{
		tasks:   tasks,
		staff:   staff,
		logger:  logger,
		metrics: m,
	}
}

// CreateTask creates a new task
func (s *TaskApplicationService) CreateTask(ctx context.Context, cmd CreateTaskCommand) (*TaskDTO, error) {
	task := domain.NewTask(cmd.WarehouseID, cmd.Type, cmd.Priority)
	task.ZoneID = cmd.ZoneID
	task.LocationID = cmd.LocationID
	task.Notes = cmd.Notes
	task.EstimatedDurationMinutes = cmd.EstimatedDurationMinutes
	task.DueAt = cmd.DueAt

	if err := s.tasks.Save(ctx, task); err != nil {
		s.logger.WithError(err).Error("Failed to save task", "taskId", task.TaskID)
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTaskCreated(string(task.Type))
	}

	s.logger.Info("Created task", "taskId", task.TaskID, "taskNumber", task.TaskNumber)
	return ToTaskDTO(task), nil
}

// GetTask retrieves a task by ID
func (s *TaskApplicationService) GetTask(ctx context.Context, query GetTaskQuery) (*TaskDTO, error) {
	task, err := s.tasks.FindByID(ctx, query.TaskID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get task", "taskId", query.TaskID)
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if task == nil {
		return nil, errors.ErrNotFound("task")
	}

	return ToTaskDTO(task), nil
}

// ListTasks retrieves tasks matching a filter
func (s *TaskApplicationService) ListTasks(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	filter := domain.TaskFilter{
		WarehouseID: query.WarehouseID,
		ZoneID:      query.ZoneID,
		Status:      domain.TaskStatus(query.Status),
		AssignedTo:  query.AssignedTo,
		Type:        domain.TaskType(query.Type),
		DueBefore:   query.DueBefore,
		Limit:       limit,
		Offset:      query.Offset,
	}

	tasks, err := s.tasks.FindByFilter(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list tasks")
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return ToTaskDTOs(tasks), nil
}

// GetStatistics aggregates task counts by status for a warehouse
func (s *TaskApplicationService) GetStatistics(ctx context.Context, query TaskStatisticsQuery) (*TaskStatisticsDTO, error) {
	counts, err := s.tasks.CountByStatus(ctx, query.WarehouseID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to aggregate task statistics", "warehouseId", query.WarehouseID)
		return nil, fmt.Errorf("failed to aggregate task statistics: %w", err)
	}

	stats := &TaskStatisticsDTO{
		WarehouseID: query.WarehouseID,
		ByStatus:    make(map[string]int64, len(counts)),
	}
	for status, count := range counts {
		stats.ByStatus[string(status)] = count
		stats.Total += count
	}

	return stats, nil
}

// AssignTask assigns a task to a staff member. The conditional save is
// retried with a fresh re-read on version conflicts so concurrent assigns
// on the same task cannot both win.
func (s *TaskApplicationService) AssignTask(ctx context.Context, cmd AssignTaskCommand) (*TaskDTO, error) {
	staff, err := s.staff.FindByID(ctx, cmd.StaffID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get staff", "staffId", cmd.StaffID)
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	if staff == nil {
		return nil, errors.ErrNotFound("staff")
	}
	if !staff.IsActive() {
		return nil, errors.ErrValidation("staff member is not active")
	}

	task, err := s.mutateTask(ctx, cmd.TaskID, func(task *domain.Task) error {
		if staff.WarehouseID != task.WarehouseID {
			return errors.ErrValidation("staff member belongs to a different warehouse")
		}
		return task.Assign(cmd.StaffID)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTaskAssigned("manual")
	}
	s.logger.TaskTransition(ctx, task.TaskID, string(domain.TaskStatusPending), string(task.Status), cmd.StaffID)
	return ToTaskDTO(task), nil
}

// StartTask starts an assigned task
func (s *TaskApplicationService) StartTask(ctx context.Context, cmd StartTaskCommand) (*TaskDTO, error) {
	task, err := s.mutateTask(ctx, cmd.TaskID, func(task *domain.Task) error {
		return task.Start()
	})
	if err != nil {
		return nil, err
	}

	s.logger.TaskTransition(ctx, task.TaskID, string(domain.TaskStatusAssigned), string(task.Status), task.AssignedTo)
	return ToTaskDTO(task), nil
}

// CompleteTask completes an in-progress task
func (s *TaskApplicationService) CompleteTask(ctx context.Context, cmd CompleteTaskCommand) (*TaskDTO, error) {
	task, err := s.mutateTask(ctx, cmd.TaskID, func(task *domain.Task) error {
		return task.Complete(cmd.ActualDurationMinutes)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTaskCompleted(string(task.Type))
	}
	s.logger.TaskTransition(ctx, task.TaskID, string(domain.TaskStatusInProgress), string(task.Status), task.AssignedTo)
	return ToTaskDTO(task), nil
}

// CancelTask cancels a task with a reason
func (s *TaskApplicationService) CancelTask(ctx context.Context, cmd CancelTaskCommand) (*TaskDTO, error) {
	task, err := s.mutateTask(ctx, cmd.TaskID, func(task *domain.Task) error {
		return task.Cancel(cmd.Reason)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTaskCancelled(string(task.Type))
	}
	s.logger.Info("Cancelled task", "taskId", task.TaskID, "reason", cmd.Reason)
	return ToTaskDTO(task), nil
}

// HoldTask puts a task on hold
func (s *TaskApplicationService) HoldTask(ctx context.Context, cmd HoldTaskCommand) (*TaskDTO, error) {
	task, err := s.mutateTask(ctx, cmd.TaskID, func(task *domain.Task) error {
		return task.Hold(cmd.Reason)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Held task", "taskId", task.TaskID, "reason", cmd.Reason)
	return ToTaskDTO(task), nil
}

// ResumeTask resumes a held task, restoring its previous assignee
func (s *TaskApplicationService) ResumeTask(ctx context.Context, cmd ResumeTaskCommand) (*TaskDTO, error) {
	task, err := s.mutateTask(ctx, cmd.TaskID, func(task *domain.Task) error {
		return task.Resume()
	})
	if err != nil {
		return nil, err
	}

	s.logger.TaskTransition(ctx, task.TaskID, string(domain.TaskStatusOnHold), string(task.Status), task.AssignedTo)
	return ToTaskDTO(task), nil
}

// UnassignTask returns a task to the pending queue
func (s *TaskApplicationService) UnassignTask(ctx context.Context, cmd UnassignTaskCommand) (*TaskDTO, error) {
	task, err := s.mutateTask(ctx, cmd.TaskID, func(task *domain.Task) error {
		return task.Unassign()
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Unassigned task", "taskId", task.TaskID)
	return ToTaskDTO(task), nil
}

// ChangePriority changes a task's priority
func (s *TaskApplicationService) ChangePriority(ctx context.Context, cmd ChangePriorityCommand) (*TaskDTO, error) {
	task, err := s.mutateTask(ctx, cmd.TaskID, func(task *domain.Task) error {
		return task.ChangePriority(cmd.Priority)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Changed task priority", "taskId", task.TaskID, "priority", cmd.Priority)
	return ToTaskDTO(task), nil
}

// mutateTask re-reads the task, applies the mutation and saves with the
// version guard. Conflicting saves are retried against a fresh copy so the
// domain guard re-evaluates the new state; a guard failure after conflict
// surfaces as the usual state error.
func (s *TaskApplicationService) mutateTask(ctx context.Context, taskID string, mutate func(*domain.Task) error) (*domain.Task, error) {
	var result *domain.Task

	retryConfig := &resilience.RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  10 * time.Millisecond,
		MaxDelay:      250 * time.Millisecond,
		BackoffFactor: 2.0,
		RetryableErrors: func(err error) bool {
			return goerrors.Is(err, domain.ErrConcurrentModification)
		},
	}

	err := resilience.Retry(ctx, retryConfig, func() error {
		task, err := s.tasks.FindByID(ctx, taskID)
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}
		if task == nil {
			return errors.ErrNotFound("task")
		}

		if err := mutate(task); err != nil {
			return errors.MapDomainError(err)
		}

		if err := s.tasks.Save(ctx, task); err != nil {
			return errors.MapDomainError(err)
		}

		// Events are saved to outbox by repository in transaction

		result = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
