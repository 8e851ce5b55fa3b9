package domain

// Routing constants for time estimation
const (
	// AverageWalkSpeed is expressed in distance units per minute
	AverageWalkSpeed = 50.0
	// AveragePickTimeMinutes is the handling time per picked item
	AveragePickTimeMinutes = 0.5

	// AlgorithmNearestNeighbor tags paths produced by the greedy heuristic
	AlgorithmNearestNeighbor = "nearest-neighbor"
)

// NearestNeighborPath orders destinations by repeatedly stepping to the
// closest unvisited location, starting from the depot. Ties are broken by
// the destination's position in the input slice so a fixed input ordering
// always yields the same path. The result is [depot, v1, v2, ..., vn].
//
// This is a heuristic, not an exact tour solver; callers must not assume
// minimal total distance.
func NearestNeighborPath(depot *Location, destinations []*Location) []*Location {
	path := make([]*Location, 0, len(destinations)+1)
	path = append(path, depot)

	visited := make([]bool, len(destinations))
	current := depot

	for remaining := len(destinations); remaining > 0; remaining-- {
		nearestIdx := -1
		nearestDist := 0.0

		for i, dest := range destinations {
			if visited[i] {
				continue
			}
			d := current.DistanceTo(dest)
			if nearestIdx == -1 || d < nearestDist {
				nearestIdx = i
				nearestDist = d
			}
		}

		visited[nearestIdx] = true
		current = destinations[nearestIdx]
		path = append(path, current)
	}

	return path
}

// TotalDistance sums the consecutive pairwise distances over a path
func TotalDistance(path []*Location) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		total += path[i].DistanceTo(path[i+1])
	}
	return total
}

// EstimateTimeMinutes converts a path distance and item count into an
// estimated walking plus picking time
func EstimateTimeMinutes(totalDistance float64, itemCount int) float64 {
	return totalDistance/AverageWalkSpeed + float64(itemCount)*AveragePickTimeMinutes
}
