package domain

import "time"

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// TaskCreatedEvent is published when a task is created
type TaskCreatedEvent struct {
	TaskID      string    `json:"taskId"`
	TaskNumber  string    `json:"taskNumber"`
	WarehouseID string    `json:"warehouseId"`
	TaskType    string    `json:"taskType"`
	Priority    int       `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (e *TaskCreatedEvent) EventType() string     { return "wms.task.created" }
func (e *TaskCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// TaskAssignedEvent is published when a task is assigned to a staff member
type TaskAssignedEvent struct {
	TaskID      string    `json:"taskId"`
	WarehouseID string    `json:"warehouseId"`
	StaffID     string    `json:"staffId"`
	AssignedAt  time.Time `json:"assignedAt"`
}

func (e *TaskAssignedEvent) EventType() string     { return "wms.task.assigned" }
func (e *TaskAssignedEvent) OccurredAt() time.Time { return e.AssignedAt }

// TaskUnassignedEvent is published when an assignee is removed from a task
type TaskUnassignedEvent struct {
	TaskID       string    `json:"taskId"`
	WarehouseID  string    `json:"warehouseId"`
	StaffID      string    `json:"staffId"`
	UnassignedAt time.Time `json:"unassignedAt"`
}

func (e *TaskUnassignedEvent) EventType() string     { return "wms.task.unassigned" }
func (e *TaskUnassignedEvent) OccurredAt() time.Time { return e.UnassignedAt }

// TaskStartedEvent is published when work on a task begins
type TaskStartedEvent struct {
	TaskID      string    `json:"taskId"`
	WarehouseID string    `json:"warehouseId"`
	StaffID     string    `json:"staffId"`
	StartedAt   time.Time `json:"startedAt"`
}

func (e *TaskStartedEvent) EventType() string     { return "wms.task.started" }
func (e *TaskStartedEvent) OccurredAt() time.Time { return e.StartedAt }

// TaskCompletedEvent is published when a task is completed
type TaskCompletedEvent struct {
	TaskID                string    `json:"taskId"`
	WarehouseID           string    `json:"warehouseId"`
	StaffID               string    `json:"staffId"`
	ActualDurationMinutes int       `json:"actualDurationMinutes"`
	CompletedAt           time.Time `json:"completedAt"`
}

func (e *TaskCompletedEvent) EventType() string     { return "wms.task.completed" }
func (e *TaskCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }

// TaskCancelledEvent is published when a task is cancelled
type TaskCancelledEvent struct {
	TaskID      string    `json:"taskId"`
	WarehouseID string    `json:"warehouseId"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelledAt"`
}

func (e *TaskCancelledEvent) EventType() string     { return "wms.task.cancelled" }
func (e *TaskCancelledEvent) OccurredAt() time.Time { return e.CancelledAt }

// TaskHeldEvent is published when a task is put on hold
type TaskHeldEvent struct {
	TaskID      string    `json:"taskId"`
	WarehouseID string    `json:"warehouseId"`
	Reason      string    `json:"reason"`
	HeldAt      time.Time `json:"heldAt"`
}

func (e *TaskHeldEvent) EventType() string     { return "wms.task.held" }
func (e *TaskHeldEvent) OccurredAt() time.Time { return e.HeldAt }

// TaskResumedEvent is published when a held task resumes
type TaskResumedEvent struct {
	TaskID      string    `json:"taskId"`
	WarehouseID string    `json:"warehouseId"`
	StaffID     string    `json:"staffId"`
	ResumedAt   time.Time `json:"resumedAt"`
}

func (e *TaskResumedEvent) EventType() string     { return "wms.task.resumed" }
func (e *TaskResumedEvent) OccurredAt() time.Time { return e.ResumedAt }

// TaskPriorityChangedEvent is published when a task's priority changes
type TaskPriorityChangedEvent struct {
	TaskID      string    `json:"taskId"`
	WarehouseID string    `json:"warehouseId"`
	OldPriority int       `json:"oldPriority"`
	NewPriority int       `json:"newPriority"`
	ChangedAt   time.Time `json:"changedAt"`
}

func (e *TaskPriorityChangedEvent) EventType() string     { return "wms.task.priority-changed" }
func (e *TaskPriorityChangedEvent) OccurredAt() time.Time { return e.ChangedAt }
