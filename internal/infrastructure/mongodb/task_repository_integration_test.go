package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wms-platform/warehouse-core/internal/domain"
	"github.com/wms-platform/warehouse-core/pkg/cloudevents"
	sharedtesting "github.com/wms-platform/warehouse-core/pkg/testing"
)

func setupTaskRepository(t *testing.T) (*TaskRepository, *mongo.Database, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	mongoContainer, err := sharedtesting.NewMongoDBContainer(ctx)
	require.NoError(t, err)

	client, err := mongoContainer.GetClient(ctx)
	require.NoError(t, err)

	db := client.Database("test_warehouse_core")
	repo := NewTaskRepository(db, cloudevents.NewEventFactory("/warehouse-core-test"))

	cleanup := func() {
		if err := client.Disconnect(ctx); err != nil {
			t.Logf("Failed to disconnect MongoDB client: %v", err)
		}
		if err := mongoContainer.Close(ctx); err != nil {
			t.Logf("Failed to close MongoDB container: %v", err)
		}
	}

	return repo, db, cleanup
}

func TestTaskRepository_SaveAndFind(t *testing.T) {
	repo, _, cleanup := setupTaskRepository(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t.Run("save new task", func(t *testing.T) {
		task := domain.NewTask("wh-1", domain.TaskTypePicking, domain.PriorityHigh)

		err := repo.Save(ctx, task)
		require.NoError(t, err)
		assert.Equal(t, int64(1), task.Version)
		assert.Empty(t, task.GetDomainEvents())

		found, err := repo.FindByID(ctx, task.TaskID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, task.TaskID, found.TaskID)
		assert.Equal(t, domain.TaskStatusPending, found.Status)
		assert.Equal(t, int64(1), found.Version)
	})

	t.Run("missing task resolves to nil", func(t *testing.T) {
		found, err := repo.FindByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("save writes events to outbox", func(t *testing.T) {
		task := domain.NewTask("wh-1", domain.TaskTypePacking, domain.PriorityMedium)
		require.NoError(t, repo.Save(ctx, task))

		events, err := repo.GetOutboxRepository().FindByAggregateID(ctx, task.TaskID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "wms.task.created", events[0].EventType)
		assert.False(t, events[0].IsPublished())
	})
}

func TestTaskRepository_VersionConflict(t *testing.T) {
	repo, _, cleanup := setupTaskRepository(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	task := domain.NewTask("wh-1", domain.TaskTypePicking, domain.PriorityMedium)
	require.NoError(t, repo.Save(ctx, task))

	// Two readers load the same version; the second save must fail.
	first, err := repo.FindByID(ctx, task.TaskID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, task.TaskID)
	require.NoError(t, err)

	require.NoError(t, first.Assign("staff-1"))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.Assign("staff-2"))
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	// The stored task kept the winner's assignee.
	current, err := repo.FindByID(ctx, task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", current.AssignedTo)
	assert.Equal(t, int64(2), current.Version)
}

func TestTaskRepository_Queries(t *testing.T) {
	repo, _, cleanup := setupTaskRepository(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	urgent := domain.NewTask("wh-1", domain.TaskTypePicking, domain.PriorityUrgent)
	urgent.ZoneID = "zone-a"
	low := domain.NewTask("wh-1", domain.TaskTypePicking, domain.PriorityLow)
	low.ZoneID = "zone-a"
	other := domain.NewTask("wh-2", domain.TaskTypePicking, domain.PriorityMedium)
	for _, task := range []*domain.Task{urgent, low, other} {
		require.NoError(t, repo.Save(ctx, task))
	}

	assigned := domain.NewTask("wh-1", domain.TaskTypePacking, domain.PriorityMedium)
	require.NoError(t, repo.Save(ctx, assigned))
	loaded, err := repo.FindByID(ctx, assigned.TaskID)
	require.NoError(t, err)
	require.NoError(t, loaded.Assign("staff-1"))
	require.NoError(t, repo.Save(ctx, loaded))

	t.Run("pending by warehouse sorts by priority", func(t *testing.T) {
		pending, err := repo.FindPendingByWarehouse(ctx, "wh-1")
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, urgent.TaskID, pending[0].TaskID)
		assert.Equal(t, low.TaskID, pending[1].TaskID)
	})

	t.Run("pending by zone", func(t *testing.T) {
		pending, err := repo.FindPendingByZone(ctx, "wh-1", "zone-a")
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})

	t.Run("count active by staff", func(t *testing.T) {
		count, err := repo.CountActiveByStaff(ctx, "staff-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("count by status", func(t *testing.T) {
		counts, err := repo.CountByStatus(ctx, "wh-1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), counts[domain.TaskStatusPending])
		assert.Equal(t, int64(1), counts[domain.TaskStatusAssigned])
	})

	t.Run("filter by assignee", func(t *testing.T) {
		tasks, err := repo.FindByFilter(ctx, domain.TaskFilter{
			WarehouseID: "wh-1",
			AssignedTo:  "staff-1",
			Limit:       10,
		})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, assigned.TaskID, tasks[0].TaskID)
	})
}
