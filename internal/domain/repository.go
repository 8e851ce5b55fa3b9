package domain

import (
	"context"
	"time"
)

// TaskFilter narrows task listings
type TaskFilter struct {
	WarehouseID string
	ZoneID      string
	Status      TaskStatus
	AssignedTo  string
	Type        TaskType
	DueBefore   *time.Time
	Limit       int
	Offset      int
}

// TaskRepository defines the interface for task persistence. Save performs a
// conditional update keyed on the task's version and returns
// ErrConcurrentModification when the stored version differs.
type TaskRepository interface {
	Save(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, taskID string) (*Task, error)
	FindByFilter(ctx context.Context, filter TaskFilter) ([]*Task, error)
	FindPendingByWarehouse(ctx context.Context, warehouseID string) ([]*Task, error)
	FindPendingByZone(ctx context.Context, warehouseID, zoneID string) ([]*Task, error)
	CountActiveByStaff(ctx context.Context, staffID string) (int64, error)
	CountByStatus(ctx context.Context, warehouseID string) (map[TaskStatus]int64, error)
}

// LocationRepository defines read access to warehouse locations
type LocationRepository interface {
	FindByID(ctx context.Context, locationID string) (*Location, error)
	FindByIDs(ctx context.Context, locationIDs []string) ([]*Location, error)
	FindByBarcode(ctx context.Context, barcode string) (*Location, error)
	FindByZone(ctx context.Context, zoneID string) ([]*Location, error)
	FindDepotByZone(ctx context.Context, zoneID string) (*Location, error)
	FindDepotByWarehouse(ctx context.Context, warehouseID string) (*Location, error)
}

// ZoneRepository defines read access to warehouse zones
type ZoneRepository interface {
	FindByID(ctx context.Context, zoneID string) (*Zone, error)
	FindByWarehouse(ctx context.Context, warehouseID string) ([]*Zone, error)
}

// StaffRepository defines read access to warehouse staff
type StaffRepository interface {
	FindByID(ctx context.Context, staffID string) (*Staff, error)
	FindActiveByWarehouse(ctx context.Context, warehouseID string) ([]*Staff, error)
}

// InventoryResolver resolves pick request item ids to their stored location,
// product and quantity
type InventoryResolver interface {
	Resolve(ctx context.Context, itemID string) (*InventoryItem, error)
}

// InventoryItem is the resolved view of a pick request item
type InventoryItem struct {
	ItemID     string `bson:"itemId"`
	LocationID string `bson:"locationId"`
	ProductID  string `bson:"productId"`
	Quantity   int    `bson:"quantity"`
	OrderID    string `bson:"orderId,omitempty"`
}

// OrderRepository resolves order ids to their item ids
type OrderRepository interface {
	FindItemIDsByOrder(ctx context.Context, orderID string) ([]string, error)
}
