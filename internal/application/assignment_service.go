package application

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/wms-platform/warehouse-core/internal/domain"
	"github.com/wms-platform/warehouse-core/pkg/errors"
	"github.com/wms-platform/warehouse-core/pkg/logging"
	"github.com/wms-platform/warehouse-core/pkg/metrics"
)

// AssignmentService distributes pending tasks across active warehouse staff.
type AssignmentService struct {
	tasks   domain.TaskRepository
	staff   domain.StaffRepository
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	tasks domain.TaskRepository,
	staff domain.StaffRepository,
	logger *logging.Logger,
	m *metrics.Metrics,
) *AssignmentService {
	return &AssignmentService{
		tasks:   tasks,
		staff:   staff,
		logger:  logger,
		metrics: m,
	}
}

// AutoAssign assigns pending tasks to the least-loaded active staff members.
// Tasks are taken in priority order and each assignment goes to whichever
// staff member currently carries the fewest active tasks. A staff member who
// receives a task leaves the eligible pool for the rest of the run, so one
// call makes at most min(pendingTasks, activeStaff, maxAssignments)
// assignments and never piles a whole backlog onto a single person.
func (s *AssignmentService) AutoAssign(ctx context.Context, cmd AutoAssignCommand) (*AutoAssignResultDTO, error) {
	if cmd.MaxAssignments <= 0 {
		return nil, errors.ErrValidation("maxAssignments must be positive")
	}

	pending, err := s.tasks.FindPendingByWarehouse(ctx, cmd.WarehouseID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load pending tasks", "warehouseId", cmd.WarehouseID)
		return nil, fmt.Errorf("failed to load pending tasks: %w", err)
	}

	staff, err := s.staff.FindActiveByWarehouse(ctx, cmd.WarehouseID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load active staff", "warehouseId", cmd.WarehouseID)
		return nil, fmt.Errorf("failed to load active staff: %w", err)
	}

	result := &AutoAssignResultDTO{WarehouseID: cmd.WarehouseID}
	if len(pending) == 0 || len(staff) == 0 {
		s.logger.Info("Nothing to auto-assign",
			"warehouseId", cmd.WarehouseID,
			"pendingTasks", len(pending),
			"activeStaff", len(staff))
		return result, nil
	}

	assignedThisRun := make(map[string]bool)

	for _, task := range pending {
		if result.AssignmentsMade >= cmd.MaxAssignments {
			break
		}

		candidate, err := s.leastLoaded(ctx, staff, assignedThisRun)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			// Every active staff member already received work this run.
			break
		}

		if err := s.assignOne(ctx, task, candidate.StaffID); err != nil {
			// A concurrent writer claimed or transitioned this task;
			// leave it and move on to the next one.
			if goerrors.Is(err, domain.ErrConcurrentModification) ||
				goerrors.Is(err, domain.ErrTaskAlreadyAssigned) {
				s.logger.Warn("Skipping contested task during auto-assign",
					"taskId", task.TaskID, "error", err.Error())
				continue
			}
			return nil, err
		}

		assignedThisRun[candidate.StaffID] = true
		result.AssignmentsMade++
		if s.metrics != nil {
			s.metrics.RecordTaskAssigned("auto")
		}
		s.logger.TaskTransition(ctx, task.TaskID, string(domain.TaskStatusPending), string(domain.TaskStatusAssigned), candidate.StaffID)
	}

	if s.metrics != nil && result.AssignmentsMade > 0 {
		s.metrics.RecordAutoAssignments(cmd.WarehouseID, result.AssignmentsMade)
	}

	s.logger.Info("Auto-assignment completed",
		"warehouseId", cmd.WarehouseID,
		"assignmentsMade", result.AssignmentsMade,
		"pendingTasks", len(pending),
		"activeStaff", len(staff))

	return result, nil
}

// leastLoaded returns the eligible staff member with the fewest active
// tasks, or nil when the exclude set covers the whole list. Ties resolve to
// the earlier entry in the staff list.
func (s *AssignmentService) leastLoaded(ctx context.Context, staff []*domain.Staff, exclude map[string]bool) (*domain.Staff, error) {
	var best *domain.Staff
	var bestLoad int64

	for _, member := range staff {
		if exclude[member.StaffID] {
			continue
		}
		load, err := s.tasks.CountActiveByStaff(ctx, member.StaffID)
		if err != nil {
			s.logger.WithError(err).Error("Failed to count staff workload", "staffId", member.StaffID)
			return nil, fmt.Errorf("failed to count staff workload: %w", err)
		}
		if best == nil || load < bestLoad {
			best = member
			bestLoad = load
		}
	}

	return best, nil
}

func (s *AssignmentService) assignOne(ctx context.Context, task *domain.Task, staffID string) error {
	if err := task.Assign(staffID); err != nil {
		return err
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return err
	}

	// Events are saved to outbox by repository in transaction

	return nil
}
