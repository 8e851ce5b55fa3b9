package application

import "time"

// TaskDTO represents a task in responses
type TaskDTO struct {
	TaskID                   string     `json:"taskId"`
	TaskNumber               string     `json:"taskNumber"`
	WarehouseID              string     `json:"warehouseId"`
	ZoneID                   string     `json:"zoneId,omitempty"`
	LocationID               string     `json:"locationId,omitempty"`
	Type                     string     `json:"type"`
	Priority                 int        `json:"priority"`
	Status                   string     `json:"status"`
	AssignedTo               string     `json:"assignedTo,omitempty"`
	Notes                    string     `json:"notes,omitempty"`
	ReferenceID              string     `json:"referenceId,omitempty"`
	ReferenceType            string     `json:"referenceType,omitempty"`
	EstimatedDurationMinutes int        `json:"estimatedDurationMinutes,omitempty"`
	ActualDurationMinutes    int        `json:"actualDurationMinutes,omitempty"`
	DueAt                    *time.Time `json:"dueAt,omitempty"`
	CreatedAt                time.Time  `json:"createdAt"`
	UpdatedAt                time.Time  `json:"updatedAt"`
	AssignedAt               *time.Time `json:"assignedAt,omitempty"`
	StartedAt                *time.Time `json:"startedAt,omitempty"`
	CompletedAt              *time.Time `json:"completedAt,omitempty"`
	CancelledAt              *time.Time `json:"cancelledAt,omitempty"`
}

// PickItemDTO represents an item on a picking path
type PickItemDTO struct {
	ItemID       string `json:"itemId"`
	LocationID   string `json:"locationId"`
	ProductID    string `json:"productId"`
	Quantity     int    `json:"quantity"`
	OrderID      string `json:"orderId,omitempty"`
	PickSequence int    `json:"pickSequence"`
}

// PickingPathDTO represents an optimized walking route
type PickingPathDTO struct {
	PathID               string        `json:"pathId"`
	WarehouseID          string        `json:"warehouseId"`
	ZoneID               string        `json:"zoneId,omitempty"`
	Items                []PickItemDTO `json:"items"`
	StartLocationID      string        `json:"startLocationId"`
	EndLocationID        string        `json:"endLocationId"`
	TotalDistance        float64       `json:"totalDistance"`
	EstimatedTimeMinutes float64       `json:"estimatedTimeMinutes"`
	Algorithm            string        `json:"algorithm"`
	CreatedAt            time.Time     `json:"createdAt"`
}

// TaskBatchDTO groups the existing task ids that were re-pointed at one
// re-optimized path
type TaskBatchDTO struct {
	PathID  string   `json:"pathId"`
	TaskIDs []string `json:"taskIds"`
}

// BatchResultDTO aggregates the outcome of a batch processing run
type BatchResultDTO struct {
	BatchID                   string           `json:"batchId"`
	WarehouseID               string           `json:"warehouseId"`
	ZoneID                    string           `json:"zoneId,omitempty"`
	ItemCount                 int              `json:"itemCount"`
	ZoneCount                 int              `json:"zoneCount"`
	BatchCount                int              `json:"batchCount"`
	TotalDistance             float64          `json:"totalDistance"`
	TotalEstimatedTimeMinutes float64          `json:"totalEstimatedTimeMinutes"`
	PickingPaths              []PickingPathDTO `json:"pickingPaths"`
	CreatedTaskIDs            []string         `json:"createdTaskIds"`
	TaskBatches               []TaskBatchDTO   `json:"taskBatches,omitempty"`
	CreatedAt                 time.Time        `json:"createdAt"`
}

// TaskStatisticsDTO aggregates task counts for a warehouse
type TaskStatisticsDTO struct {
	WarehouseID string           `json:"warehouseId"`
	Total       int64            `json:"total"`
	ByStatus    map[string]int64 `json:"byStatus"`
}

// AutoAssignResultDTO reports the outcome of an auto-assignment run
type AutoAssignResultDTO struct {
	WarehouseID     string `json:"warehouseId"`
	AssignmentsMade int    `json:"assignmentsMade"`
}
