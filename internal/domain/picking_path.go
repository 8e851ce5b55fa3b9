package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// PickItem is a single item to retrieve along a picking path. Items sharing
// a location share a pick sequence.
type PickItem struct {
	ItemID       string `bson:"itemId" json:"itemId"`
	LocationID   string `bson:"locationId" json:"locationId"`
	ProductID    string `bson:"productId" json:"productId"`
	Quantity     int    `bson:"quantity" json:"quantity"`
	OrderID      string `bson:"orderId,omitempty" json:"orderId,omitempty"`
	PickSequence int    `bson:"pickSequence" json:"pickSequence"`
}

// PickingPath is an ordered walking route through a warehouse. The route
// starts and ends at its depot. Paths are ephemeral: produced by the
// optimizer and consumed immediately by the batch processor.
type PickingPath struct {
	PathID               string     `bson:"pathId" json:"pathId"`
	WarehouseID          string     `bson:"warehouseId" json:"warehouseId"`
	ZoneID               string     `bson:"zoneId,omitempty" json:"zoneId,omitempty"`
	Items                []PickItem `bson:"items" json:"items"`
	StartLocationID      string     `bson:"startLocationId" json:"startLocationId"`
	EndLocationID        string     `bson:"endLocationId" json:"endLocationId"`
	TotalDistance        float64    `bson:"totalDistance" json:"totalDistance"`
	EstimatedTimeMinutes float64    `bson:"estimatedTimeMinutes" json:"estimatedTimeMinutes"`
	Algorithm            string     `bson:"algorithm" json:"algorithm"`
	CreatedAt            time.Time  `bson:"createdAt" json:"createdAt"`
}

// NewPickingPath builds a path from an ordered route. The route must begin
// with the depot; destination visit order determines each item's pick
// sequence, counted from 0 over the destinations (the depot is not a pick
// stop). Items whose location is not on the route are dropped.
func NewPickingPath(warehouseID, zoneID string, route []*Location, items []PickItem) *PickingPath {
	depot := route[0]

	// 0-based sequence per destination visit order
	sequenceByLocation := make(map[string]int, len(route)-1)
	for i, loc := range route[1:] {
		sequenceByLocation[loc.LocationID] = i
	}

	sequenced := make([]PickItem, 0, len(items))
	for _, item := range items {
		seq, ok := sequenceByLocation[item.LocationID]
		if !ok {
			continue
		}
		item.PickSequence = seq
		sequenced = append(sequenced, item)
	}

	sort.SliceStable(sequenced, func(i, j int) bool {
		return sequenced[i].PickSequence < sequenced[j].PickSequence
	})

	totalDistance := TotalDistance(route)

	return &PickingPath{
		PathID:               uuid.New().String(),
		WarehouseID:          warehouseID,
		ZoneID:               zoneID,
		Items:                sequenced,
		StartLocationID:      depot.LocationID,
		EndLocationID:        depot.LocationID,
		TotalDistance:        totalDistance,
		EstimatedTimeMinutes: EstimateTimeMinutes(totalDistance, len(sequenced)),
		Algorithm:            AlgorithmNearestNeighbor,
		CreatedAt:            time.Now(),
	}
}

// ItemCount returns the number of items on the path
func (p *PickingPath) ItemCount() int {
	return len(p.Items)
}

// LocationIDs returns the distinct visited location ids in visit order,
// depot first
func (p *PickingPath) LocationIDs() []string {
	ids := make([]string, 0, len(p.Items)+1)
	ids = append(ids, p.StartLocationID)
	seen := map[string]bool{}
	for _, item := range p.Items {
		if !seen[item.LocationID] {
			seen[item.LocationID] = true
			ids = append(ids, item.LocationID)
		}
	}
	return ids
}
