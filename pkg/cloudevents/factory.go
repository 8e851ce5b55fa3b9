package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory creates CloudEvents for warehouse-core domain events
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent creates a new WMSCloudEvent with the given parameters
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *WMSCloudEvent {
	event := &WMSCloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
		Extensions:      make(map[string]interface{}),
	}

	return event
}

// CreateEventWithCorrelation creates an event with correlation tracking
func (f *EventFactory) CreateEventWithCorrelation(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
	correlationID string,
) *WMSCloudEvent {
	event := f.CreateEvent(ctx, eventType, subject, data)
	event.CorrelationID = correlationID
	return event
}

// CreatePathOptimizedEvent creates a PathOptimized event
func (f *EventFactory) CreatePathOptimizedEvent(
	ctx context.Context,
	pathID string,
	warehouseID string,
	zoneID string,
	stops []LocationStop,
	totalDistance float64,
	estimatedTimeMinutes float64,
	algorithm string,
) *WMSCloudEvent {
	data := PathOptimizedData{
		PathID:               pathID,
		WarehouseID:          warehouseID,
		ZoneID:               zoneID,
		Stops:                stops,
		TotalDistance:        totalDistance,
		EstimatedTimeMinutes: estimatedTimeMinutes,
		Algorithm:            algorithm,
	}
	event := f.CreateEvent(ctx, PathOptimized, "path/"+pathID, data)
	event.WarehouseID = warehouseID
	return event
}

// CreateBatchProcessedEvent creates a BatchProcessed event
func (f *EventFactory) CreateBatchProcessedEvent(
	ctx context.Context,
	batchID string,
	warehouseID string,
	itemCount int,
	zoneCount int,
	createdTaskIDs []string,
	totalDistance float64,
	totalTimeMinutes float64,
) *WMSCloudEvent {
	data := BatchProcessedData{
		BatchID:          batchID,
		WarehouseID:      warehouseID,
		ItemCount:        itemCount,
		ZoneCount:        zoneCount,
		CreatedTaskIDs:   createdTaskIDs,
		TotalDistance:    totalDistance,
		TotalTimeMinutes: totalTimeMinutes,
	}
	event := f.CreateEvent(ctx, BatchProcessed, "batch/"+batchID, data)
	event.WarehouseID = warehouseID
	event.BatchID = batchID
	return event
}
