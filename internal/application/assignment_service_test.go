package application

import (
	"context"
	"testing"
	"time"

	"github.com/wms-platform/warehouse-core/internal/domain"
)

func newAssignmentService(tasks domain.TaskRepository, staff domain.StaffRepository) *AssignmentService {
	return NewAssignmentService(tasks, staff, testLogger(), nil)
}

func seedPending(t *testing.T, repo *memTaskRepo, priority int) *domain.Task {
	t.Helper()
	task := domain.NewTask("wh-1", domain.TaskTypePicking, priority)
	if err := repo.Save(context.Background(), task); err != nil {
		t.Fatalf("unexpected seed err: %v", err)
	}
	return task
}

func staffList(ids ...string) []*domain.Staff {
	out := make([]*domain.Staff, len(ids))
	for i, id := range ids {
		out[i] = &domain.Staff{
			StaffID:     id,
			WarehouseID: "wh-1",
			Status:      domain.StaffStatusActive,
		}
	}
	return out
}

func TestAssignmentService_AutoAssign_BalancesLoad(t *testing.T) {
	repo := newMemTaskRepo()

	// staff-1 already carries an active task, so the least-loaded pick
	// must go to staff-2 first.
	carried := domain.NewTask("wh-1", domain.TaskTypePicking, domain.PriorityMedium)
	if err := carried.Assign("staff-1"); err != nil {
		t.Fatalf("unexpected assign err: %v", err)
	}
	if err := repo.Save(context.Background(), carried); err != nil {
		t.Fatalf("unexpected seed err: %v", err)
	}
	for i := 0; i < 2; i++ {
		seedPending(t, repo, domain.PriorityMedium)
	}

	staff := &stubStaffRepo{
		FindActiveByWarehouseFn: func(_ context.Context, _ string) ([]*domain.Staff, error) {
			return staffList("staff-1", "staff-2"), nil
		},
	}
	service := newAssignmentService(repo, staff)

	result, err := service.AutoAssign(context.Background(), AutoAssignCommand{WarehouseID: "wh-1", MaxAssignments: 10})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.AssignmentsMade != 2 {
		t.Fatalf("expected 2 assignments, got %d", result.AssignmentsMade)
	}

	load1, _ := repo.CountActiveByStaff(context.Background(), "staff-1")
	load2, _ := repo.CountActiveByStaff(context.Background(), "staff-2")
	if load1 != 2 || load2 != 1 {
		t.Fatalf("expected loads 2 and 1, got %d and %d", load1, load2)
	}
}

func TestAssignmentService_AutoAssign_RespectsMaxAssignments(t *testing.T) {
	repo := newMemTaskRepo()
	for i := 0; i < 5; i++ {
		seedPending(t, repo, domain.PriorityMedium)
	}

	staff := &stubStaffRepo{
		FindActiveByWarehouseFn: func(_ context.Context, _ string) ([]*domain.Staff, error) {
			return staffList("staff-1", "staff-2", "staff-3"), nil
		},
	}
	service := newAssignmentService(repo, staff)

	result, err := service.AutoAssign(context.Background(), AutoAssignCommand{WarehouseID: "wh-1", MaxAssignments: 2})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.AssignmentsMade != 2 {
		t.Fatalf("expected 2 assignments, got %d", result.AssignmentsMade)
	}

	pending, _ := repo.FindPendingByWarehouse(context.Background(), "wh-1")
	if len(pending) != 3 {
		t.Fatalf("expected 3 tasks left pending, got %d", len(pending))
	}
}

func TestAssignmentService_AutoAssign_OneTaskPerStaffPerRun(t *testing.T) {
	repo := newMemTaskRepo()
	for i := 0; i < 5; i++ {
		seedPending(t, repo, domain.PriorityMedium)
	}

	staff := &stubStaffRepo{
		FindActiveByWarehouseFn: func(_ context.Context, _ string) ([]*domain.Staff, error) {
			return staffList("staff-1"), nil
		},
	}
	service := newAssignmentService(repo, staff)

	result, err := service.AutoAssign(context.Background(), AutoAssignCommand{WarehouseID: "wh-1", MaxAssignments: 3})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.AssignmentsMade != 1 {
		t.Fatalf("expected 1 assignment with a single staff member, got %d", result.AssignmentsMade)
	}

	pending, _ := repo.FindPendingByWarehouse(context.Background(), "wh-1")
	if len(pending) != 4 {
		t.Fatalf("expected 4 tasks left pending, got %d", len(pending))
	}
	load, _ := repo.CountActiveByStaff(context.Background(), "staff-1")
	if load != 1 {
		t.Fatalf("expected staff load 1, got %d", load)
	}
}

func TestAssignmentService_AutoAssign_PriorityOrder(t *testing.T) {
	repo := newMemTaskRepo()
	low := seedPending(t, repo, domain.PriorityLow)
	time.Sleep(time.Millisecond)
	urgent := seedPending(t, repo, domain.PriorityUrgent)

	staff := &stubStaffRepo{
		FindActiveByWarehouseFn: func(_ context.Context, _ string) ([]*domain.Staff, error) {
			return staffList("staff-1"), nil
		},
	}
	service := newAssignmentService(repo, staff)

	result, err := service.AutoAssign(context.Background(), AutoAssignCommand{WarehouseID: "wh-1", MaxAssignments: 1})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.AssignmentsMade != 1 {
		t.Fatalf("expected 1 assignment, got %d", result.AssignmentsMade)
	}

	assigned, _ := repo.FindByID(context.Background(), urgent.TaskID)
	if assigned.Status != domain.TaskStatusAssigned {
		t.Fatalf("expected urgent task assigned first, got %s", assigned.Status)
	}
	skipped, _ := repo.FindByID(context.Background(), low.TaskID)
	if skipped.Status != domain.TaskStatusPending {
		t.Fatalf("expected low priority task still pending, got %s", skipped.Status)
	}
}

func TestAssignmentService_AutoAssign_NoStaff(t *testing.T) {
	repo := newMemTaskRepo()
	seedPending(t, repo, domain.PriorityMedium)

	staff := &stubStaffRepo{
		FindActiveByWarehouseFn: func(_ context.Context, _ string) ([]*domain.Staff, error) {
			return nil, nil
		},
	}
	service := newAssignmentService(repo, staff)

	result, err := service.AutoAssign(context.Background(), AutoAssignCommand{WarehouseID: "wh-1", MaxAssignments: 10})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.AssignmentsMade != 0 {
		t.Fatalf("expected no assignments, got %d", result.AssignmentsMade)
	}
}

func TestAssignmentService_AutoAssign_InvalidMax(t *testing.T) {
	service := newAssignmentService(newMemTaskRepo(), &stubStaffRepo{})

	if _, err := service.AutoAssign(context.Background(), AutoAssignCommand{WarehouseID: "wh-1", MaxAssignments: 0}); err == nil {
		t.Fatal("expected error for non-positive max")
	}
}

func TestAssignmentService_AutoAssign_SkipsContestedTask(t *testing.T) {
	repo := newMemTaskRepo()
	contested := seedPending(t, repo, domain.PriorityUrgent)
	time.Sleep(time.Millisecond)
	seedPending(t, repo, domain.PriorityMedium)

	// Another writer claims the contested task between the list read and the
	// save by bumping its stored version.
	wrapped := &stubTaskRepo{
		FindByIDFn:               repo.FindByID,
		FindPendingByWarehouseFn: repo.FindPendingByWarehouse,
		CountActiveByStaffFn:     repo.CountActiveByStaff,
		SaveFn: func(ctx context.Context, task *domain.Task) error {
			if task.TaskID == contested.TaskID {
				return domain.ErrConcurrentModification
			}
			return repo.Save(ctx, task)
		},
	}
	staff := &stubStaffRepo{
		FindActiveByWarehouseFn: func(_ context.Context, _ string) ([]*domain.Staff, error) {
			return staffList("staff-1"), nil
		},
	}
	service := newAssignmentService(wrapped, staff)

	result, err := service.AutoAssign(context.Background(), AutoAssignCommand{WarehouseID: "wh-1", MaxAssignments: 10})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.AssignmentsMade != 1 {
		t.Fatalf("expected the uncontested task assigned, got %d", result.AssignmentsMade)
	}
}
