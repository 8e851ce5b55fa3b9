package application

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/wms-platform/warehouse-core/pkg/errors"

	"github.com/wms-platform/warehouse-core/internal/domain"
)

func newTaskService(tasks domain.TaskRepository, staff domain.StaffRepository) *TaskApplicationService {
	return NewTaskApplicationService(tasks, staff, testLogger(), nil)
}

func activeStaff(staffID string) *domain.Staff {
	return &domain.Staff{
		StaffID:     staffID,
		WarehouseID: "wh-1",
		Name:        "Ada",
		Status:      domain.StaffStatusActive,
	}
}

func seedTask(t *testing.T, repo *memTaskRepo) *domain.Task {
	t.Helper()
	task := domain.NewTask("wh-1", domain.TaskTypePicking, domain.PriorityHigh)
	if err := repo.Save(context.Background(), task); err != nil {
		t.Fatalf("unexpected seed err: %v", err)
	}
	return task
}

func TestTaskApplicationService_CreateTask(t *testing.T) {
	var saved *domain.Task
	repo := &stubTaskRepo{
		SaveFn: func(_ context.Context, task *domain.Task) error {
			saved = task
			return nil
		},
	}
	service := newTaskService(repo, &stubStaffRepo{})

	dto, err := service.CreateTask(context.Background(), CreateTaskCommand{
		WarehouseID: "wh-1",
		ZoneID:      "zone-a",
		Type:        domain.TaskTypePicking,
		Priority:    domain.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if saved == nil {
		t.Fatal("expected task to be saved")
	}
	if dto.Status != string(domain.TaskStatusPending) {
		t.Fatalf("expected pending status, got %s", dto.Status)
	}
	if dto.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected priority: %d", dto.Priority)
	}
	if dto.TaskNumber == "" {
		t.Fatal("expected generated task number")
	}
}

func TestTaskApplicationService_CreateTask_DefaultPriority(t *testing.T) {
	service := newTaskService(&stubTaskRepo{}, &stubStaffRepo{})

	dto, err := service.CreateTask(context.Background(), CreateTaskCommand{
		WarehouseID: "wh-1",
		Type:        domain.TaskTypeReplenishment,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if dto.Priority != domain.PriorityMedium {
		t.Fatalf("expected medium priority, got %d", dto.Priority)
	}
}

func TestTaskApplicationService_GetTask_NotFound(t *testing.T) {
	service := newTaskService(&stubTaskRepo{}, &stubStaffRepo{})

	_, err := service.GetTask(context.Background(), GetTaskQuery{TaskID: "missing"})
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTaskApplicationService_AssignTask(t *testing.T) {
	repo := newMemTaskRepo()
	task := seedTask(t, repo)

	staff := &stubStaffRepo{
		FindByIDFn: func(_ context.Context, staffID string) (*domain.Staff, error) {
			return activeStaff(staffID), nil
		},
	}
	service := newTaskService(repo, staff)

	dto, err := service.AssignTask(context.Background(), AssignTaskCommand{TaskID: task.TaskID, StaffID: "staff-1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if dto.Status != string(domain.TaskStatusAssigned) {
		t.Fatalf("expected assigned status, got %s", dto.Status)
	}
	if dto.AssignedTo != "staff-1" {
		t.Fatalf("unexpected assignee: %s", dto.AssignedTo)
	}
	if dto.AssignedAt == nil {
		t.Fatal("expected assignedAt to be set")
	}
}

func TestTaskApplicationService_AssignTask_InactiveStaff(t *testing.T) {
	staff := &stubStaffRepo{
		FindByIDFn: func(_ context.Context, staffID string) (*domain.Staff, error) {
			member := activeStaff(staffID)
			member.Status = domain.StaffStatusInactive
			return member, nil
		},
	}
	service := newTaskService(newMemTaskRepo(), staff)

	_, err := service.AssignTask(context.Background(), AssignTaskCommand{TaskID: "task-1", StaffID: "staff-1"})
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidationError {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTaskApplicationService_AssignTask_WrongWarehouse(t *testing.T) {
	repo := newMemTaskRepo()
	task := seedTask(t, repo)
	staff := &stubStaffRepo{
		FindByIDFn: func(_ context.Context, staffID string) (*domain.Staff, error) {
			member := activeStaff(staffID)
			member.WarehouseID = "wh-2"
			return member, nil
		},
	}
	service := newTaskService(repo, staff)

	_, err := service.AssignTask(context.Background(), AssignTaskCommand{TaskID: task.TaskID, StaffID: "staff-1"})
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidationError {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTaskApplicationService_AssignTask_AlreadyAssigned(t *testing.T) {
	repo := newMemTaskRepo()
	task := seedTask(t, repo)

	staff := &stubStaffRepo{
		FindByIDFn: func(_ context.Context, staffID string) (*domain.Staff, error) {
			return activeStaff(staffID), nil
		},
	}
	service := newTaskService(repo, staff)

	if _, err := service.AssignTask(context.Background(), AssignTaskCommand{TaskID: task.TaskID, StaffID: "staff-1"}); err != nil {
		t.Fatalf("unexpected first assign err: %v", err)
	}
	_, err := service.AssignTask(context.Background(), AssignTaskCommand{TaskID: task.TaskID, StaffID: "staff-2"})
	if err == nil {
		t.Fatal("expected error on second assign")
	}
}

func TestTaskApplicationService_AssignTask_RetriesOnVersionConflict(t *testing.T) {
	repo := newMemTaskRepo()
	task := seedTask(t, repo)

	// Make the first save observe a stale version.
	conflicts := 1
	conflicting := &stubTaskRepo{
		FindByIDFn: repo.FindByID,
		SaveFn: func(ctx context.Context, task *domain.Task) error {
			if conflicts > 0 {
				conflicts--
				return domain.ErrConcurrentModification
			}
			return repo.Save(ctx, task)
		},
	}
	staff := &stubStaffRepo{
		FindByIDFn: func(_ context.Context, staffID string) (*domain.Staff, error) {
			return activeStaff(staffID), nil
		},
	}
	service := newTaskService(conflicting, staff)

	dto, err := service.AssignTask(context.Background(), AssignTaskCommand{TaskID: task.TaskID, StaffID: "staff-1"})
	if err != nil {
		t.Fatalf("expected assign to succeed after retry, got %v", err)
	}
	if dto.Status != string(domain.TaskStatusAssigned) {
		t.Fatalf("expected assigned status, got %s", dto.Status)
	}
	if conflicts != 0 {
		t.Fatal("expected conflicting save to be consumed")
	}
}

func TestTaskApplicationService_FullLifecycle(t *testing.T) {
	repo := newMemTaskRepo()
	task := seedTask(t, repo)

	staff := &stubStaffRepo{
		FindByIDFn: func(_ context.Context, staffID string) (*domain.Staff, error) {
			return activeStaff(staffID), nil
		},
	}
	service := newTaskService(repo, staff)
	ctx := context.Background()

	if _, err := service.AssignTask(ctx, AssignTaskCommand{TaskID: task.TaskID, StaffID: "staff-1"}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := service.StartTask(ctx, StartTaskCommand{TaskID: task.TaskID}); err != nil {
		t.Fatalf("start: %v", err)
	}

	minutes := 12
	dto, err := service.CompleteTask(ctx, CompleteTaskCommand{TaskID: task.TaskID, ActualDurationMinutes: &minutes})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if dto.Status != string(domain.TaskStatusCompleted) {
		t.Fatalf("expected completed status, got %s", dto.Status)
	}
	if dto.ActualDurationMinutes != 12 {
		t.Fatalf("unexpected duration: %d", dto.ActualDurationMinutes)
	}
}

func TestTaskApplicationService_HoldAndResumeRestoresAssignee(t *testing.T) {
	repo := newMemTaskRepo()
	task := seedTask(t, repo)

	staff := &stubStaffRepo{
		FindByIDFn: func(_ context.Context, staffID string) (*domain.Staff, error) {
			return activeStaff(staffID), nil
		},
	}
	service := newTaskService(repo, staff)
	ctx := context.Background()

	if _, err := service.AssignTask(ctx, AssignTaskCommand{TaskID: task.TaskID, StaffID: "staff-1"}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	held, err := service.HoldTask(ctx, HoldTaskCommand{TaskID: task.TaskID, Reason: "aisle blocked"})
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if held.Status != string(domain.TaskStatusOnHold) {
		t.Fatalf("expected on hold status, got %s", held.Status)
	}
	if held.AssignedTo != "" {
		t.Fatalf("expected assignee cleared while held, got %s", held.AssignedTo)
	}

	resumed, err := service.ResumeTask(ctx, ResumeTaskCommand{TaskID: task.TaskID})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != string(domain.TaskStatusAssigned) {
		t.Fatalf("expected assigned status, got %s", resumed.Status)
	}
	if resumed.AssignedTo != "staff-1" {
		t.Fatalf("expected assignee restored, got %q", resumed.AssignedTo)
	}
}

func TestTaskApplicationService_CancelRequiresReason(t *testing.T) {
	repo := newMemTaskRepo()
	task := seedTask(t, repo)
	service := newTaskService(repo, &stubStaffRepo{})

	if _, err := service.CancelTask(context.Background(), CancelTaskCommand{TaskID: task.TaskID}); err == nil {
		t.Fatal("expected error for missing reason")
	}

	dto, err := service.CancelTask(context.Background(), CancelTaskCommand{TaskID: task.TaskID, Reason: "duplicate"})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if dto.Status != string(domain.TaskStatusCancelled) {
		t.Fatalf("expected cancelled status, got %s", dto.Status)
	}
	if dto.Notes != "cancelled: duplicate" {
		t.Fatalf("unexpected notes: %q", dto.Notes)
	}
}

func TestTaskApplicationService_GetStatistics(t *testing.T) {
	repo := &stubTaskRepo{
		CountByStatusFn: func(_ context.Context, _ string) (map[domain.TaskStatus]int64, error) {
			return map[domain.TaskStatus]int64{
				domain.TaskStatusPending:   3,
				domain.TaskStatusCompleted: 7,
			}, nil
		},
	}
	service := newTaskService(repo, &stubStaffRepo{})

	stats, err := service.GetStatistics(context.Background(), TaskStatisticsQuery{WarehouseID: "wh-1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if stats.Total != 10 {
		t.Fatalf("expected total 10, got %d", stats.Total)
	}
	if stats.ByStatus["PENDING"] != 3 || stats.ByStatus["COMPLETED"] != 7 {
		t.Fatalf("unexpected breakdown: %#v", stats.ByStatus)
	}
}

func TestTaskApplicationService_ChangePriority_Invalid(t *testing.T) {
	repo := newMemTaskRepo()
	task := seedTask(t, repo)
	service := newTaskService(repo, &stubStaffRepo{})

	if _, err := service.ChangePriority(context.Background(), ChangePriorityCommand{TaskID: task.TaskID, Priority: 11}); err == nil {
		t.Fatal("expected error for out of range priority")
	}

	dto, err := service.ChangePriority(context.Background(), ChangePriorityCommand{TaskID: task.TaskID, Priority: domain.PriorityUrgent})
	if err != nil {
		t.Fatalf("change priority: %v", err)
	}
	if dto.Priority != domain.PriorityUrgent {
		t.Fatalf("unexpected priority: %d", dto.Priority)
	}
}
