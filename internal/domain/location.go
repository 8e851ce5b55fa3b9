package domain

import (
	"math"
	"strconv"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Axis weights for travel cost. Crossing aisles is far more expensive than
// shifting along a shelf.
const (
	aisleWeight    = 3.0
	rackWeight     = 1.5
	levelWeight    = 2.0
	positionWeight = 0.5
)

// Location represents a physical storage location in a warehouse
type Location struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	LocationID  string             `bson:"locationId"`
	WarehouseID string             `bson:"warehouseId"`
	ZoneID      string             `bson:"zoneId"`
	Aisle       string             `bson:"aisle"`
	Rack        string             `bson:"rack"`
	Level       string             `bson:"level"`
	Position    string             `bson:"position"`
	Barcode     string             `bson:"barcode"`
	Occupied    bool               `bson:"occupied"`
	IsDepot     bool               `bson:"isDepot"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// axisValue reduces a coordinate label to an integer by concatenating its
// digit characters ("A12" becomes 12). A label with no digits falls back to
// the numeric value of its first character; an empty label yields 0.
func axisValue(label string) int {
	if label == "" {
		return 0
	}

	digits := make([]rune, 0, len(label))
	for _, r := range label {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}

	if len(digits) > 0 {
		v, err := strconv.Atoi(string(digits))
		if err == nil {
			return v
		}
	}

	first := []rune(label)[0]
	switch {
	case unicode.IsDigit(first):
		return int(first - '0')
	case first >= 'a' && first <= 'z':
		return int(first-'a') + 10
	case first >= 'A' && first <= 'Z':
		return int(first-'A') + 10
	default:
		return 0
	}
}

// DistanceTo computes the weighted Euclidean travel cost between two
// locations. Two locations with identical coordinates have distance 0.
func (l *Location) DistanceTo(other *Location) float64 {
	dAisle := float64(axisValue(l.Aisle) - axisValue(other.Aisle))
	dRack := float64(axisValue(l.Rack) - axisValue(other.Rack))
	dLevel := float64(axisValue(l.Level) - axisValue(other.Level))
	dPosition := float64(axisValue(l.Position) - axisValue(other.Position))

	return math.Sqrt(
		(aisleWeight*dAisle)*(aisleWeight*dAisle) +
			(rackWeight*dRack)*(rackWeight*dRack) +
			(levelWeight*dLevel)*(levelWeight*dLevel) +
			(positionWeight*dPosition)*(positionWeight*dPosition),
	)
}

// Zone is a grouping unit for locations and zone-scoped routing
type Zone struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ZoneID      string             `bson:"zoneId"`
	WarehouseID string             `bson:"warehouseId"`
	Code        string             `bson:"code"`
	Type        string             `bson:"type"`
	Name        string             `bson:"name"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// StaffStatus represents the activity status of a staff member
type StaffStatus string

const (
	StaffStatusActive   StaffStatus = "ACTIVE"
	StaffStatusInactive StaffStatus = "INACTIVE"
)

// Staff represents a warehouse worker eligible for task assignment. The
// record is owned externally; this service reads identity, status, zone and
// current load.
type Staff struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	StaffID     string             `bson:"staffId"`
	WarehouseID string             `bson:"warehouseId"`
	ZoneID      string             `bson:"zoneId,omitempty"`
	Name        string             `bson:"name"`
	Status      StaffStatus        `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// IsActive reports whether the staff member can receive assignments
func (s *Staff) IsActive() bool {
	return s.Status == StaffStatusActive
}
