package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewPickingPath tests path construction and sequencing
func TestNewPickingPath(t *testing.T) {
	depot := loc("DEPOT", "0", "0", "0", "0")
	l1 := loc("L1", "1", "1", "1", "1")
	l2 := loc("L2", "2", "1", "1", "1")

	route := []*Location{depot, l1, l2}

	t.Run("start and end at the depot", func(t *testing.T) {
		path := NewPickingPath("WH-1", "Z-1", route, nil)

		assert.Equal(t, "DEPOT", path.StartLocationID)
		assert.Equal(t, "DEPOT", path.EndLocationID)
		assert.Equal(t, AlgorithmNearestNeighbor, path.Algorithm)
		assert.NotEmpty(t, path.PathID)
	})

	t.Run("sequences are contiguous from zero over visited destinations", func(t *testing.T) {
		items := []PickItem{
			{ItemID: "I1", LocationID: "L2", ProductID: "P1", Quantity: 1},
			{ItemID: "I2", LocationID: "L1", ProductID: "P2", Quantity: 2},
			{ItemID: "I3", LocationID: "L2", ProductID: "P3", Quantity: 1},
		}

		path := NewPickingPath("WH-1", "Z-1", route, items)

		require.Len(t, path.Items, 3)
		// sorted ascending by pick sequence
		assert.Equal(t, "I2", path.Items[0].ItemID)
		assert.Equal(t, 0, path.Items[0].PickSequence)
		// items sharing L2 share sequence 1
		assert.Equal(t, 1, path.Items[1].PickSequence)
		assert.Equal(t, 1, path.Items[2].PickSequence)
	})

	t.Run("items off the route are dropped", func(t *testing.T) {
		items := []PickItem{
			{ItemID: "I1", LocationID: "L1"},
			{ItemID: "GHOST", LocationID: "NOWHERE"},
		}

		path := NewPickingPath("WH-1", "Z-1", route, items)

		require.Len(t, path.Items, 1)
		assert.Equal(t, "I1", path.Items[0].ItemID)
	})

	t.Run("metrics derive from route and item count", func(t *testing.T) {
		items := []PickItem{
			{ItemID: "I1", LocationID: "L1"},
			{ItemID: "I2", LocationID: "L2"},
		}

		path := NewPickingPath("WH-1", "Z-1", route, items)

		// sqrt(3^2+1.5^2+2^2+0.5^2) depot->L1 plus 3.0 L1->L2
		expectedDistance := TotalDistance(route)
		assert.Equal(t, expectedDistance, path.TotalDistance)
		assert.InDelta(t, EstimateTimeMinutes(expectedDistance, 2), path.EstimatedTimeMinutes, 1e-9)
		assert.Equal(t, 2, path.ItemCount())
	})

	t.Run("location ids in visit order", func(t *testing.T) {
		items := []PickItem{
			{ItemID: "I1", LocationID: "L2"},
			{ItemID: "I2", LocationID: "L1"},
		}

		path := NewPickingPath("WH-1", "Z-1", route, items)

		assert.Equal(t, []string{"DEPOT", "L1", "L2"}, path.LocationIDs())
	})
}
