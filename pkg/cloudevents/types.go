package cloudevents

import (
	"time"
)

// EventType constants for warehouse work-orchestration events
const (
	// Task lifecycle events
	TaskCreated         = "wms.task.created"
	TaskAssigned        = "wms.task.assigned"
	TaskUnassigned      = "wms.task.unassigned"
	TaskStarted         = "wms.task.started"
	TaskCompleted       = "wms.task.completed"
	TaskCancelled       = "wms.task.cancelled"
	TaskHeld            = "wms.task.held"
	TaskResumed         = "wms.task.resumed"
	TaskPriorityChanged = "wms.task.priority-changed"

	// Routing events
	PathOptimized = "wms.routing.path-optimized"

	// Batch events
	BatchProcessed = "wms.batch.processed"
)

// Source constants for event sources
const (
	SourceWarehouseCore = "/wms/warehouse-core"
)

// WMSCloudEvent represents a CloudEvents v1.0 compliant event
type WMSCloudEvent struct {
	SpecVersion     string                 `json:"specversion"`
	Type            string                 `json:"type"`
	Source          string                 `json:"source"`
	Subject         string                 `json:"subject,omitempty"`
	ID              string                 `json:"id"`
	Time            time.Time              `json:"time"`
	DataContentType string                 `json:"datacontenttype"`
	Data            interface{}            `json:"data"`
	Extensions      map[string]interface{} `json:"-"`

	// WMS-specific extensions
	CorrelationID string `json:"wmscorrelationid,omitempty"`
	WarehouseID   string `json:"wmswarehouseid,omitempty"`
	BatchID       string `json:"wmsbatchid,omitempty"`
}

// PathOptimizedData represents the data payload for PathOptimized events
type PathOptimizedData struct {
	PathID               string         `json:"pathId"`
	WarehouseID          string         `json:"warehouseId"`
	ZoneID               string         `json:"zoneId,omitempty"`
	Stops                []LocationStop `json:"stops"`
	TotalDistance        float64        `json:"totalDistance"`
	EstimatedTimeMinutes float64        `json:"estimatedTimeMinutes"`
	Algorithm            string         `json:"algorithm"`
}

// LocationStop represents a stop in a pick route
type LocationStop struct {
	LocationID string `json:"locationId"`
	Zone       string `json:"zone"`
	Aisle      string `json:"aisle"`
	Rack       string `json:"rack"`
	Level      string `json:"level"`
	Position   string `json:"position"`
}

// BatchProcessedData represents the data payload for BatchProcessed events
type BatchProcessedData struct {
	BatchID            string   `json:"batchId"`
	WarehouseID        string   `json:"warehouseId"`
	ItemCount          int      `json:"itemCount"`
	ZoneCount          int      `json:"zoneCount"`
	CreatedTaskIDs     []string `json:"createdTaskIds"`
	TotalDistance      float64  `json:"totalDistance"`
	TotalTimeMinutes   float64  `json:"totalTimeMinutes"`
}
