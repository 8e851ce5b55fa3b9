package application

import "github.com/wms-platform/warehouse-core/internal/domain"

// ToTaskDTO converts a domain Task to a TaskDTO
func ToTaskDTO(task *domain.Task) *TaskDTO {
	return &TaskDTO{
		TaskID:                   task.TaskID,
		TaskNumber:               task.TaskNumber,
		WarehouseID:              task.WarehouseID,
		ZoneID:                   task.ZoneID,
		LocationID:               task.LocationID,
		Type:                     string(task.Type),
		Priority:                 task.Priority,
		Status:                   string(task.Status),
		AssignedTo:               task.AssignedTo,
		Notes:                    task.Notes,
		ReferenceID:              task.ReferenceID,
		ReferenceType:            task.ReferenceType,
		EstimatedDurationMinutes: task.EstimatedDurationMinutes,
		ActualDurationMinutes:    task.ActualDurationMinutes,
		DueAt:                    task.DueAt,
		CreatedAt:                task.CreatedAt,
		UpdatedAt:                task.UpdatedAt,
		AssignedAt:               task.AssignedAt,
		StartedAt:                task.StartedAt,
		CompletedAt:              task.CompletedAt,
		CancelledAt:              task.CancelledAt,
	}
}

// ToTaskDTOs converts a slice of domain Tasks
func ToTaskDTOs(tasks []*domain.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = *ToTaskDTO(task)
	}
	return dtos
}

// ToPickItemDTO converts a domain PickItem
func ToPickItemDTO(item domain.PickItem) PickItemDTO {
	return PickItemDTO{
		ItemID:       item.ItemID,
		LocationID:   item.LocationID,
		ProductID:    item.ProductID,
		Quantity:     item.Quantity,
		OrderID:      item.OrderID,
		PickSequence: item.PickSequence,
	}
}

// ToPickingPathDTO converts a domain PickingPath
func ToPickingPathDTO(path *domain.PickingPath) *PickingPathDTO {
	items := make([]PickItemDTO, len(path.Items))
	for i, item := range path.Items {
		items[i] = ToPickItemDTO(item)
	}

	return &PickingPathDTO{
		PathID:               path.PathID,
		WarehouseID:          path.WarehouseID,
		ZoneID:               path.ZoneID,
		Items:                items,
		StartLocationID:      path.StartLocationID,
		EndLocationID:        path.EndLocationID,
		TotalDistance:        path.TotalDistance,
		EstimatedTimeMinutes: path.EstimatedTimeMinutes,
		Algorithm:            path.Algorithm,
		CreatedAt:            path.CreatedAt,
	}
}

// ToPickingPathDTOs converts a slice of domain PickingPaths
func ToPickingPathDTOs(paths []*domain.PickingPath) []PickingPathDTO {
	dtos := make([]PickingPathDTO, len(paths))
	for i, path := range paths {
		dtos[i] = *ToPickingPathDTO(path)
	}
	return dtos
}
