package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrTaskAlreadyAssigned      = errors.New("task is already assigned")
	ErrTaskNotAssigned          = errors.New("task has no assignee")
	ErrTaskTerminal             = errors.New("task is in a terminal status")
	ErrConcurrentModification   = errors.New("concurrent modification of task")
	ErrInvalidPriority          = errors.New("invalid priority")
	ErrInvalidActualDuration    = errors.New("invalid actual duration")
	ErrCancellationReasonNeeded = errors.New("cancellation reason is required")
)

// TaskStatus represents the lifecycle status of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusAssigned   TaskStatus = "ASSIGNED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
	TaskStatusOnHold     TaskStatus = "ON_HOLD"
)

// TaskType represents the type of warehouse task
type TaskType string

const (
	TaskTypePicking       TaskType = "PICKING"
	TaskTypePacking       TaskType = "PACKING"
	TaskTypeReplenishment TaskType = "REPLENISHMENT"
	TaskTypeCycleCount    TaskType = "CYCLE_COUNT"
	TaskTypePutaway       TaskType = "PUTAWAY"
)

// Priority ordinals, lower is more urgent
const (
	PriorityUrgent = 1
	PriorityHigh   = 3
	PriorityMedium = 5
	PriorityLow    = 8
)

// ReferenceTypePickingPath marks tasks generated from a picking path
const ReferenceTypePickingPath = "PICKING_PATH"

// transitions is the allowed status transition table
var transitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending:    {TaskStatusAssigned, TaskStatusCancelled, TaskStatusOnHold},
	TaskStatusAssigned:   {TaskStatusInProgress, TaskStatusCancelled, TaskStatusOnHold},
	TaskStatusInProgress: {TaskStatusCompleted, TaskStatusCancelled, TaskStatusOnHold},
	TaskStatusOnHold:     {TaskStatusAssigned, TaskStatusCancelled},
	TaskStatusCompleted:  {},
	TaskStatusCancelled:  {},
}

// IsTerminal reports whether the status has no outgoing transitions
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// CanTransition reports whether the transition from s to target is allowed
func (s TaskStatus) CanTransition(target TaskStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionError is returned when a lifecycle operation is invoked against
// a disallowed source status
type TransitionError struct {
	Current   TaskStatus
	Attempted TaskStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("task cannot transition from %s to %s", e.Current, e.Attempted)
}

// Task is the aggregate root for warehouse work units
type Task struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty"`
	TaskID                   string             `bson:"taskId"`
	TaskNumber               string             `bson:"taskNumber"`
	WarehouseID              string             `bson:"warehouseId"`
	ZoneID                   string             `bson:"zoneId,omitempty"`
	LocationID               string             `bson:"locationId,omitempty"`
	Type                     TaskType           `bson:"type"`
	Priority                 int                `bson:"priority"`
	Status                   TaskStatus         `bson:"status"`
	AssignedTo               string             `bson:"assignedTo,omitempty"`
	Notes                    string             `bson:"notes,omitempty"`
	ReferenceID              string             `bson:"referenceId,omitempty"`
	ReferenceType            string             `bson:"referenceType,omitempty"`
	EstimatedDurationMinutes int                `bson:"estimatedDurationMinutes,omitempty"`
	ActualDurationMinutes    int                `bson:"actualDurationMinutes,omitempty"`
	DueAt                    *time.Time         `bson:"dueAt,omitempty"`
	CreatedAt                time.Time          `bson:"createdAt"`
	UpdatedAt                time.Time          `bson:"updatedAt"`
	AssignedAt               *time.Time         `bson:"assignedAt,omitempty"`
	StartedAt                *time.Time         `bson:"startedAt,omitempty"`
	CompletedAt              *time.Time         `bson:"completedAt,omitempty"`
	CancelledAt              *time.Time         `bson:"cancelledAt,omitempty"`

	// Version guards conditional updates; a save whose version does not
	// match the stored record fails with ErrConcurrentModification.
	Version int64 `bson:"version"`

	// heldAssignee preserves the assignee while a task is on hold so that
	// resuming restores it.
	HeldAssignee string `bson:"heldAssignee,omitempty"`

	DomainEvents []DomainEvent `bson:"-"`
}

// NewTask creates a new Task aggregate in PENDING status
func NewTask(warehouseID string, taskType TaskType, priority int) *Task {
	now := time.Now()
	if priority <= 0 {
		priority = PriorityMedium
	}

	task := &Task{
		TaskID:       uuid.New().String(),
		TaskNumber:   newTaskNumber(),
		WarehouseID:  warehouseID,
		Type:         taskType,
		Priority:     priority,
		Status:       TaskStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}

	task.AddDomainEvent(&TaskCreatedEvent{
		TaskID:      task.TaskID,
		TaskNumber:  task.TaskNumber,
		WarehouseID: warehouseID,
		TaskType:    string(taskType),
		Priority:    priority,
		CreatedAt:   now,
	})

	return task
}

func newTaskNumber() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("TASK-%d-%s", time.Now().UnixMilli(), suffix)
}

// Assign assigns the task to a staff member. The task must be PENDING or
// ON_HOLD and carry no existing assignee.
func (t *Task) Assign(staffID string) error {
	if t.AssignedTo != "" {
		return ErrTaskAlreadyAssigned
	}
	if !t.Status.CanTransition(TaskStatusAssigned) {
		return &TransitionError{Current: t.Status, Attempted: TaskStatusAssigned}
	}

	now := time.Now()
	t.AssignedTo = staffID
	t.HeldAssignee = ""
	t.Status = TaskStatusAssigned
	t.AssignedAt = &now
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskAssignedEvent{
		TaskID:      t.TaskID,
		WarehouseID: t.WarehouseID,
		StaffID:     staffID,
		AssignedAt:  now,
	})

	return nil
}

// Start marks an assigned task as in progress
func (t *Task) Start() error {
	if !t.Status.CanTransition(TaskStatusInProgress) {
		return &TransitionError{Current: t.Status, Attempted: TaskStatusInProgress}
	}

	now := time.Now()
	t.Status = TaskStatusInProgress
	t.StartedAt = &now
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskStartedEvent{
		TaskID:      t.TaskID,
		WarehouseID: t.WarehouseID,
		StaffID:     t.AssignedTo,
		StartedAt:   now,
	})

	return nil
}

// Complete finishes an in-progress task. When actualDurationMinutes is nil
// the duration is derived from startedAt.
func (t *Task) Complete(actualDurationMinutes *int) error {
	if !t.Status.CanTransition(TaskStatusCompleted) {
		return &TransitionError{Current: t.Status, Attempted: TaskStatusCompleted}
	}
	if actualDurationMinutes != nil && *actualDurationMinutes < 0 {
		return ErrInvalidActualDuration
	}

	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now

	if actualDurationMinutes != nil {
		t.ActualDurationMinutes = *actualDurationMinutes
	} else if t.StartedAt != nil {
		t.ActualDurationMinutes = int(now.Sub(*t.StartedAt).Minutes())
	}
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskCompletedEvent{
		TaskID:                t.TaskID,
		WarehouseID:           t.WarehouseID,
		StaffID:               t.AssignedTo,
		ActualDurationMinutes: t.ActualDurationMinutes,
		CompletedAt:           now,
	})

	return nil
}

// Cancel cancels a non-terminal task and appends the reason to its notes
func (t *Task) Cancel(reason string) error {
	if reason == "" {
		return ErrCancellationReasonNeeded
	}
	if !t.Status.CanTransition(TaskStatusCancelled) {
		return &TransitionError{Current: t.Status, Attempted: TaskStatusCancelled}
	}

	now := time.Now()
	t.Status = TaskStatusCancelled
	t.CancelledAt = &now
	t.appendNote("cancelled: " + reason)
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskCancelledEvent{
		TaskID:      t.TaskID,
		WarehouseID: t.WarehouseID,
		Reason:      reason,
		CancelledAt: now,
	})

	return nil
}

// Hold puts a task on hold. The current assignee, if any, is remembered so
// Resume can restore it.
func (t *Task) Hold(reason string) error {
	if !t.Status.CanTransition(TaskStatusOnHold) {
		return &TransitionError{Current: t.Status, Attempted: TaskStatusOnHold}
	}

	now := time.Now()
	t.HeldAssignee = t.AssignedTo
	t.AssignedTo = ""
	t.Status = TaskStatusOnHold
	if reason != "" {
		t.appendNote("held: " + reason)
	}
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskHeldEvent{
		TaskID:      t.TaskID,
		WarehouseID: t.WarehouseID,
		Reason:      reason,
		HeldAt:      now,
	})

	return nil
}

// Resume moves a held task back to ASSIGNED, restoring the held assignee.
// A held task with no prior assignee cannot resume and must be assigned
// instead.
func (t *Task) Resume() error {
	if !t.Status.CanTransition(TaskStatusAssigned) {
		return &TransitionError{Current: t.Status, Attempted: TaskStatusAssigned}
	}
	if t.HeldAssignee == "" {
		return ErrTaskNotAssigned
	}

	now := time.Now()
	t.AssignedTo = t.HeldAssignee
	t.HeldAssignee = ""
	t.Status = TaskStatusAssigned
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskResumedEvent{
		TaskID:      t.TaskID,
		WarehouseID: t.WarehouseID,
		StaffID:     t.AssignedTo,
		ResumedAt:   now,
	})

	return nil
}

// Unassign removes the assignee from an ASSIGNED task and returns it to
// PENDING so the balancer can pick it up again
func (t *Task) Unassign() error {
	if t.Status != TaskStatusAssigned {
		return &TransitionError{Current: t.Status, Attempted: TaskStatusPending}
	}

	now := time.Now()
	staffID := t.AssignedTo
	t.AssignedTo = ""
	t.Status = TaskStatusPending
	t.AssignedAt = nil
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskUnassignedEvent{
		TaskID:       t.TaskID,
		WarehouseID:  t.WarehouseID,
		StaffID:      staffID,
		UnassignedAt: now,
	})

	return nil
}

// ChangePriority changes the priority of a non-terminal task
func (t *Task) ChangePriority(priority int) error {
	if priority < 1 || priority > 10 {
		return ErrInvalidPriority
	}
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTaskTerminal, t.Status)
	}

	now := time.Now()
	old := t.Priority
	t.Priority = priority
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskPriorityChangedEvent{
		TaskID:      t.TaskID,
		WarehouseID: t.WarehouseID,
		OldPriority: old,
		NewPriority: priority,
		ChangedAt:   now,
	})

	return nil
}

// IsActive reports whether the task counts toward its assignee's load
func (t *Task) IsActive() bool {
	return t.Status == TaskStatusAssigned || t.Status == TaskStatusInProgress
}

// IsOverdue reports whether a non-terminal task is past its due time
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueAt != nil && !t.Status.IsTerminal() && now.After(*t.DueAt)
}

func (t *Task) appendNote(note string) {
	if t.Notes == "" {
		t.Notes = note
		return
	}
	t.Notes = t.Notes + "; " + note
}

// AddDomainEvent adds a domain event
func (t *Task) AddDomainEvent(event DomainEvent) {
	t.DomainEvents = append(t.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (t *Task) ClearDomainEvents() {
	t.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (t *Task) GetDomainEvents() []DomainEvent {
	return t.DomainEvents
}
