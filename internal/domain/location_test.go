package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func loc(id, aisle, rack, level, position string) *Location {
	return &Location{
		LocationID: id,
		Aisle:      aisle,
		Rack:       rack,
		Level:      level,
		Position:   position,
	}
}

// TestAxisValue tests coordinate label reduction
func TestAxisValue(t *testing.T) {
	tests := []struct {
		label    string
		expected int
	}{
		{"A12", 12},
		{"12", 12},
		{"B-03-7", 37},
		{"a", 10},
		{"A", 10},
		{"z", 35},
		{"", 0},
		{"#", 0},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.expected, axisValue(tt.label))
		})
	}
}

// TestDistanceTo tests the weighted travel cost
func TestDistanceTo(t *testing.T) {
	t.Run("identical coordinates have distance zero", func(t *testing.T) {
		a := loc("L1", "A1", "R2", "L3", "P4")
		b := loc("L2", "A1", "R2", "L3", "P4")
		assert.Equal(t, 0.0, a.DistanceTo(b))
	})

	t.Run("single aisle step costs exactly 3", func(t *testing.T) {
		a := loc("L1", "1", "1", "1", "1")
		b := loc("L2", "2", "1", "1", "1")
		assert.InDelta(t, 3.0, a.DistanceTo(b), 1e-9)
	})

	t.Run("single rack step costs 1.5", func(t *testing.T) {
		a := loc("L1", "1", "1", "1", "1")
		b := loc("L2", "1", "2", "1", "1")
		assert.InDelta(t, 1.5, a.DistanceTo(b), 1e-9)
	})

	t.Run("distance is symmetric and non-negative", func(t *testing.T) {
		a := loc("L1", "A3", "R7", "L1", "P9")
		b := loc("L2", "A8", "R2", "L4", "P1")
		assert.Equal(t, a.DistanceTo(b), b.DistanceTo(a))
		assert.GreaterOrEqual(t, a.DistanceTo(b), 0.0)
	})

	t.Run("labels with no digits fall back to first character", func(t *testing.T) {
		a := loc("L1", "a", "1", "1", "1")
		b := loc("L2", "10", "1", "1", "1")
		assert.Equal(t, 0.0, a.DistanceTo(b))
	})
}
