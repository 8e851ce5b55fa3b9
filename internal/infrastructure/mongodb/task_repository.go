package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/warehouse-core/internal/domain"
	"github.com/wms-platform/warehouse-core/pkg/cloudevents"
	"github.com/wms-platform/warehouse-core/pkg/kafka"
	"github.com/wms-platform/warehouse-core/pkg/outbox"
	outboxMongo "github.com/wms-platform/warehouse-core/pkg/outbox/mongodb"
)

type TaskRepository struct {
	collection   *mongo.Collection
	db           *mongo.Database
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
}

func NewTaskRepository(db *mongo.Database, eventFactory *cloudevents.EventFactory) *TaskRepository {
	collection := db.Collection("tasks")
	outboxRepo := outboxMongo.NewOutboxRepository(db)

	repo := &TaskRepository{
		collection:   collection,
		db:           db,
		outboxRepo:   outboxRepo,
		eventFactory: eventFactory,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *TaskRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "taskId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "taskNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "warehouseId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "warehouseId", Value: 1}, {Key: "zoneId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "assignedTo", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "priority", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "referenceId", Value: 1}}},
		{Keys: bson.D{{Key: "dueAt", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)

	_ = r.outboxRepo.EnsureIndexes(ctx)
}

// Save persists the task and its domain events in a single transaction.
// The stored version must match the version the task was read at, otherwise
// domain.ErrConcurrentModification is returned and nothing is written.
func (r *TaskRepository) Save(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now()

	readVersion := task.Version
	task.Version = readVersion + 1

	session, err := r.db.Client().StartSession()
	if err != nil {
		task.Version = readVersion
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if readVersion == 0 {
			if _, err := r.collection.InsertOne(sessCtx, task); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					return nil, domain.ErrConcurrentModification
				}
				return nil, fmt.Errorf("failed to insert task: %w", err)
			}
		} else {
			filter := bson.M{"taskId": task.TaskID, "version": readVersion}
			result, err := r.collection.ReplaceOne(sessCtx, filter, task)
			if err != nil {
				return nil, fmt.Errorf("failed to update task: %w", err)
			}
			if result.MatchedCount == 0 {
				return nil, domain.ErrConcurrentModification
			}
		}

		if err := r.saveEventsToOutbox(sessCtx, task); err != nil {
			return nil, err
		}

		task.ClearDomainEvents()
		return nil, nil
	})
	if err != nil {
		task.Version = readVersion
		if err == domain.ErrConcurrentModification {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

func (r *TaskRepository) saveEventsToOutbox(sessCtx mongo.SessionContext, task *domain.Task) error {
	domainEvents := task.GetDomainEvents()
	if len(domainEvents) == 0 {
		return nil
	}

	outboxEvents := make([]*outbox.OutboxEvent, 0, len(domainEvents))
	for _, event := range domainEvents {
		cloudEvent := r.eventFactory.CreateEvent(sessCtx, event.EventType(), "task/"+task.TaskID, event)

		outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(
			task.TaskID,
			"Task",
			kafka.TopicForEventType(event.EventType()),
			cloudEvent,
		)
		if err != nil {
			return fmt.Errorf("failed to create outbox event: %w", err)
		}
		outboxEvents = append(outboxEvents, outboxEvent)
	}

	if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
		return fmt.Errorf("failed to save outbox events: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, taskID string) (*domain.Task, error) {
	var task domain.Task
	err := r.collection.FindOne(ctx, bson.M{"taskId": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &task, err
}

func (r *TaskRepository) FindByFilter(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	mongoFilter := bson.M{}
	if filter.WarehouseID != "" {
		mongoFilter["warehouseId"] = filter.WarehouseID
	}
	if filter.ZoneID != "" {
		mongoFilter["zoneId"] = filter.ZoneID
	}
	if filter.Status != "" {
		mongoFilter["status"] = filter.Status
	}
	if filter.AssignedTo != "" {
		mongoFilter["assignedTo"] = filter.AssignedTo
	}
	if filter.Type != "" {
		mongoFilter["type"] = filter.Type
	}
	if filter.DueBefore != nil {
		mongoFilter["dueAt"] = bson.M{"$lt": *filter.DueBefore}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "priority", Value: 1}, {Key: "createdAt", Value: 1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))
	cursor, err := r.collection.Find(ctx, mongoFilter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var tasks []*domain.Task
	err = cursor.All(ctx, &tasks)
	return tasks, err
}

func (r *TaskRepository) FindPendingByWarehouse(ctx context.Context, warehouseID string) ([]*domain.Task, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "priority", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{
		"warehouseId": warehouseID,
		"status":      domain.TaskStatusPending,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var tasks []*domain.Task
	err = cursor.All(ctx, &tasks)
	return tasks, err
}

func (r *TaskRepository) FindPendingByZone(ctx context.Context, warehouseID, zoneID string) ([]*domain.Task, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "priority", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{
		"warehouseId": warehouseID,
		"zoneId":      zoneID,
		"status":      domain.TaskStatusPending,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var tasks []*domain.Task
	err = cursor.All(ctx, &tasks)
	return tasks, err
}

func (r *TaskRepository) CountActiveByStaff(ctx context.Context, staffID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"assignedTo": staffID,
		"status":     bson.M{"$in": []domain.TaskStatus{domain.TaskStatusAssigned, domain.TaskStatusInProgress}},
	})
}

func (r *TaskRepository) CountByStatus(ctx context.Context, warehouseID string) (map[domain.TaskStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"warehouseId": warehouseID}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status domain.TaskStatus `bson:"_id"`
		Count  int64             `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[domain.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// GetOutboxRepository exposes the outbox store backing this repository
func (r *TaskRepository) GetOutboxRepository() outbox.Repository {
	return r.outboxRepo
}
