package application

import (
	"time"

	"github.com/wms-platform/warehouse-core/internal/domain"
)

// CreateTaskCommand creates a new task
type CreateTaskCommand struct {
	WarehouseID              string
	ZoneID                   string
	LocationID               string
	Type                     domain.TaskType
	Priority                 int
	Notes                    string
	EstimatedDurationMinutes int
	DueAt                    *time.Time
}

// GetTaskQuery retrieves a task by ID
type GetTaskQuery struct {
	TaskID string
}

// ListTasksQuery retrieves tasks matching a filter
type ListTasksQuery struct {
	WarehouseID string
	ZoneID      string
	Status      string
	AssignedTo  string
	Type        string
	DueBefore   *time.Time
	Limit       int
	Offset      int
}

// AssignTaskCommand assigns a task to a staff member
type AssignTaskCommand struct {
	TaskID  string
	StaffID string
}

// StartTaskCommand starts an assigned task
type StartTaskCommand struct {
	TaskID string
}

// CompleteTaskCommand completes an in-progress task
type CompleteTaskCommand struct {
	TaskID                string
	ActualDurationMinutes *int
}

// CancelTaskCommand cancels a task
type CancelTaskCommand struct {
	TaskID string
	Reason string
}

// HoldTaskCommand puts a task on hold
type HoldTaskCommand struct {
	TaskID string
	Reason string
}

// ResumeTaskCommand resumes a held task
type ResumeTaskCommand struct {
	TaskID string
}

// UnassignTaskCommand returns a task to the pending queue
type UnassignTaskCommand struct {
	TaskID string
}

// ChangePriorityCommand changes a task's priority
type ChangePriorityCommand struct {
	TaskID   string
	Priority int
}

// AutoAssignCommand distributes pending tasks across active staff
type AutoAssignCommand struct {
	WarehouseID    string
	MaxAssignments int
}

// TaskStatisticsQuery aggregates task counts for a warehouse
type TaskStatisticsQuery struct {
	WarehouseID string
}

// OptimizeWarehouseCommand optimizes a route across a whole warehouse
type OptimizeWarehouseCommand struct {
	WarehouseID string
	ItemIDs     []string
}

// OptimizeZoneCommand optimizes a route restricted to one zone
type OptimizeZoneCommand struct {
	ZoneID  string
	ItemIDs []string
}

// OptimizeOrdersCommand optimizes one route per order
type OptimizeOrdersCommand struct {
	WarehouseID string
	OrderIDs    []string
}

// ProcessBatchCommand groups pick requests by zone and materializes tasks
type ProcessBatchCommand struct {
	WarehouseID string
	ItemIDs     []string
}

// MultiOrderFulfillmentCommand creates one optimized task per order
type MultiOrderFulfillmentCommand struct {
	WarehouseID string
	OrderIDs    []string
}

// ZoneTaskBatchesCommand chunks existing pending zone tasks into batches
type ZoneTaskBatchesCommand struct {
	WarehouseID      string
	ZoneID           string
	MaxTasksPerBatch int
}
