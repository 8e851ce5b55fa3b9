package application

import (
	"context"
	"time"

	"github.com/wms-platform/warehouse-core/internal/domain"
	"github.com/wms-platform/warehouse-core/pkg/cloudevents"
	"github.com/wms-platform/warehouse-core/pkg/logging"
)

type stubTaskRepo struct {
	SaveFn                   func(ctx context.Context, task *domain.Task) error
	FindByIDFn               func(ctx context.Context, taskID string) (*domain.Task, error)
	FindByFilterFn           func(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)
	FindPendingByWarehouseFn func(ctx context.Context, warehouseID string) ([]*domain.Task, error)
	FindPendingByZoneFn      func(ctx context.Context, warehouseID, zoneID string) ([]*domain.Task, error)
	CountActiveByStaffFn     func(ctx context.Context, staffID string) (int64, error)
	CountByStatusFn          func(ctx context.Context, warehouseID string) (map[domain.TaskStatus]int64, error)
}

func (s *stubTaskRepo) Save(ctx context.Context, task *domain.Task) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, task)
	}
	return nil
}

func (s *stubTaskRepo) FindByID(ctx context.Context, taskID string) (*domain.Task, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, taskID)
	}
	return nil, nil
}

func (s *stubTaskRepo) FindByFilter(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	if s.FindByFilterFn != nil {
		return s.FindByFilterFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubTaskRepo) FindPendingByWarehouse(ctx context.Context, warehouseID string) ([]*domain.Task, error) {
	if s.FindPendingByWarehouseFn != nil {
		return s.FindPendingByWarehouseFn(ctx, warehouseID)
	}
	return nil, nil
}

func (s *stubTaskRepo) FindPendingByZone(ctx context.Context, warehouseID, zoneID string) ([]*domain.Task, error) {
	if s.FindPendingByZoneFn != nil {
		return s.FindPendingByZoneFn(ctx, warehouseID, zoneID)
	}
	return nil, nil
}

func (s *stubTaskRepo) CountActiveByStaff(ctx context.Context, staffID string) (int64, error) {
	if s.CountActiveByStaffFn != nil {
		return s.CountActiveByStaffFn(ctx, staffID)
	}
	return 0, nil
}

func (s *stubTaskRepo) CountByStatus(ctx context.Context, warehouseID string) (map[domain.TaskStatus]int64, error) {
	if s.CountByStatusFn != nil {
		return s.CountByStatusFn(ctx, warehouseID)
	}
	return nil, nil
}

type stubStaffRepo struct {
	FindByIDFn              func(ctx context.Context, staffID string) (*domain.Staff, error)
	FindActiveByWarehouseFn func(ctx context.Context, warehouseID string) ([]*domain.Staff, error)
}

func (s *stubStaffRepo) FindByID(ctx context.Context, staffID string) (*domain.Staff, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, staffID)
	}
	return nil, nil
}

func (s *stubStaffRepo) FindActiveByWarehouse(ctx context.Context, warehouseID string) ([]*domain.Staff, error) {
	if s.FindActiveByWarehouseFn != nil {
		return s.FindActiveByWarehouseFn(ctx, warehouseID)
	}
	return nil, nil
}

type stubLocationRepo struct {
	FindByIDFn             func(ctx context.Context, locationID string) (*domain.Location, error)
	FindByIDsFn            func(ctx context.Context, locationIDs []string) ([]*domain.Location, error)
	FindByBarcodeFn        func(ctx context.Context, barcode string) (*domain.Location, error)
	FindByZoneFn           func(ctx context.Context, zoneID string) ([]*domain.Location, error)
	FindDepotByZoneFn      func(ctx context.Context, zoneID string) (*domain.Location, error)
	FindDepotByWarehouseFn func(ctx context.Context, warehouseID string) (*domain.Location, error)
}

func (s *stubLocationRepo) FindByID(ctx context.Context, locationID string) (*domain.Location, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, locationID)
	}
	return nil, nil
}

func (s *stubLocationRepo) FindByIDs(ctx context.Context, locationIDs []string) ([]*domain.Location, error) {
	if s.FindByIDsFn != nil {
		return s.FindByIDsFn(ctx, locationIDs)
	}
	return nil, nil
}

func (s *stubLocationRepo) FindByBarcode(ctx context.Context, barcode string) (*domain.Location, error) {
	if s.FindByBarcodeFn != nil {
		return s.FindByBarcodeFn(ctx, barcode)
	}
	return nil, nil
}

func (s *stubLocationRepo) FindByZone(ctx context.Context, zoneID string) ([]*domain.Location, error) {
	if s.FindByZoneFn != nil {
		return s.FindByZoneFn(ctx, zoneID)
	}
	return nil, nil
}

func (s *stubLocationRepo) FindDepotByZone(ctx context.Context, zoneID string) (*domain.Location, error) {
	if s.FindDepotByZoneFn != nil {
		return s.FindDepotByZoneFn(ctx, zoneID)
	}
	return nil, nil
}

func (s *stubLocationRepo) FindDepotByWarehouse(ctx context.Context, warehouseID string) (*domain.Location, error) {
	if s.FindDepotByWarehouseFn != nil {
		return s.FindDepotByWarehouseFn(ctx, warehouseID)
	}
	return nil, nil
}

type stubZoneRepo struct {
	FindByIDFn        func(ctx context.Context, zoneID string) (*domain.Zone, error)
	FindByWarehouseFn func(ctx context.Context, warehouseID string) ([]*domain.Zone, error)
}

func (s *stubZoneRepo) FindByID(ctx context.Context, zoneID string) (*domain.Zone, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, zoneID)
	}
	return nil, nil
}

func (s *stubZoneRepo) FindByWarehouse(ctx context.Context, warehouseID string) ([]*domain.Zone, error) {
	if s.FindByWarehouseFn != nil {
		return s.FindByWarehouseFn(ctx, warehouseID)
	}
	return nil, nil
}

type stubInventoryResolver struct {
	ResolveFn func(ctx context.Context, itemID string) (*domain.InventoryItem, error)
}

func (s *stubInventoryResolver) Resolve(ctx context.Context, itemID string) (*domain.InventoryItem, error) {
	if s.ResolveFn != nil {
		return s.ResolveFn(ctx, itemID)
	}
	return nil, nil
}

type stubOrderRepo struct {
	FindItemIDsByOrderFn func(ctx context.Context, orderID string) ([]string, error)
}

func (s *stubOrderRepo) FindItemIDsByOrder(ctx context.Context, orderID string) ([]string, error) {
	if s.FindItemIDsByOrderFn != nil {
		return s.FindItemIDsByOrderFn(ctx, orderID)
	}
	return nil, nil
}

type publishedEvent struct {
	Topic string
	Event *cloudevents.WMSCloudEvent
}

type stubPublisher struct {
	Published []publishedEvent
	Err       error
}

func (s *stubPublisher) PublishEvent(_ context.Context, topic string, event *cloudevents.WMSCloudEvent) error {
	if s.Err != nil {
		return s.Err
	}
	s.Published = append(s.Published, publishedEvent{Topic: topic, Event: event})
	return nil
}

func testLogger() *logging.Logger {
	return logging.New(logging.DefaultConfig("test"))
}

func newTestEventFactory() *cloudevents.EventFactory {
	return cloudevents.NewEventFactory("warehouse-core-test")
}

// memTaskRepo is a map-backed TaskRepository with the same version guard as
// the persistent implementation.
type memTaskRepo struct {
	tasks map[string]*domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *memTaskRepo) Save(_ context.Context, task *domain.Task) error {
	existing, ok := r.tasks[task.TaskID]
	if ok && existing.Version != task.Version {
		return domain.ErrConcurrentModification
	}
	copied := *task
	copied.Version = task.Version + 1
	copied.ClearDomainEvents()
	r.tasks[task.TaskID] = &copied
	task.Version = copied.Version
	task.ClearDomainEvents()
	return nil
}

func (r *memTaskRepo) FindByID(_ context.Context, taskID string) (*domain.Task, error) {
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, nil
	}
	copied := *task
	return &copied, nil
}

func (r *memTaskRepo) FindByFilter(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range r.tasks {
		if filter.WarehouseID != "" && task.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memTaskRepo) FindPendingByWarehouse(_ context.Context, warehouseID string) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range r.tasks {
		if task.WarehouseID == warehouseID && task.Status == domain.TaskStatusPending {
			copied := *task
			out = append(out, &copied)
		}
	}
	sortTasksByPriority(out)
	return out, nil
}

func (r *memTaskRepo) FindPendingByZone(_ context.Context, warehouseID, zoneID string) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range r.tasks {
		if task.WarehouseID == warehouseID && task.ZoneID == zoneID && task.Status == domain.TaskStatusPending {
			copied := *task
			out = append(out, &copied)
		}
	}
	sortTasksByPriority(out)
	return out, nil
}

func (r *memTaskRepo) CountActiveByStaff(_ context.Context, staffID string) (int64, error) {
	var count int64
	for _, task := range r.tasks {
		if task.AssignedTo == staffID && task.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *memTaskRepo) CountByStatus(_ context.Context, warehouseID string) (map[domain.TaskStatus]int64, error) {
	counts := make(map[domain.TaskStatus]int64)
	for _, task := range r.tasks {
		if task.WarehouseID == warehouseID {
			counts[task.Status]++
		}
	}
	return counts, nil
}

func sortTasksByPriority(tasks []*domain.Task) {
	for i := 1; i < len(tasks); i++ {
		for j := i; j > 0 && lessTask(tasks[j], tasks[j-1]); j-- {
			tasks[j], tasks[j-1] = tasks[j-1], tasks[j]
		}
	}
}

func lessTask(a, b *domain.Task) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
