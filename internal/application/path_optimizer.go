package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wms-platform/warehouse-core/internal/domain"
	"github.com/wms-platform/warehouse-core/pkg/cloudevents"
	"github.com/wms-platform/warehouse-core/pkg/errors"
	"github.com/wms-platform/warehouse-core/pkg/kafka"
	"github.com/wms-platform/warehouse-core/pkg/logging"
	"github.com/wms-platform/warehouse-core/pkg/metrics"
	"github.com/wms-platform/warehouse-core/pkg/outbox"
)

// maxConcurrentOptimizations bounds the worker pool for per-order routing.
// Order paths touch disjoint data and need no locking between each other.
const maxConcurrentOptimizations = 4

// PathOptimizerService produces optimized picking routes. All operations are
// read-only with respect to persistent state.
type PathOptimizerService struct {
	locations    domain.LocationRepository
	zones        domain.ZoneRepository
	inventory    domain.InventoryResolver
	orders       domain.OrderRepository
	producer     outbox.EventPublisher
	eventFactory *cloudevents.EventFactory
	logger       *logging.Logger
	metrics      *metrics.Metrics
}

// NewPathOptimizerService creates a new PathOptimizerService
func NewPathOptimizerService(
	locations domain.LocationRepository,
	zones domain.ZoneRepository,
	inventory domain.InventoryResolver,
	orders domain.OrderRepository,
	producer outbox.EventPublisher,
	eventFactory *cloudevents.EventFactory,
	logger *logging.Logger,
	m *metrics.Metrics,
) *PathOptimizerService {
	return &PathOptimizerService{
		locations:    locations,
		zones:        zones,
		inventory:    inventory,
		orders:       orders,
		producer:     producer,
		eventFactory: eventFactory,
		logger:       logger,
		metrics:      m,
	}
}

// OptimizeForWarehouse resolves each item to its location and runs the
// nearest-neighbor heuristic from the warehouse depot
func (s *PathOptimizerService) OptimizeForWarehouse(ctx context.Context, cmd OptimizeWarehouseCommand) (*PickingPathDTO, error) {
	if len(cmd.ItemIDs) == 0 {
		return nil, errors.ErrValidation("at least one item is required")
	}

	items, destinations, err := s.resolveDestinations(ctx, cmd.ItemIDs, "")
	if err != nil {
		return nil, err
	}
	if len(destinations) == 0 {
		return nil, errors.ErrValidation("none of the requested items could be resolved to a location")
	}

	depot, err := s.locations.FindDepotByWarehouse(ctx, cmd.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find depot: %w", err)
	}
	if depot == nil {
		return nil, errors.ErrNotFound("depot location")
	}

	path := s.buildPath(ctx, cmd.WarehouseID, "", depot, destinations, items, "warehouse")
	return ToPickingPathDTO(path), nil
}

// OptimizeForZone restricts destinations to one zone before routing
func (s *PathOptimizerService) OptimizeForZone(ctx context.Context, cmd OptimizeZoneCommand) (*PickingPathDTO, error) {
	if len(cmd.ItemIDs) == 0 {
		return nil, errors.ErrValidation("at least one item is required")
	}

	zone, err := s.zones.FindByID(ctx, cmd.ZoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to find zone: %w", err)
	}
	if zone == nil {
		return nil, errors.ErrNotFound("zone")
	}

	items, destinations, err := s.resolveDestinations(ctx, cmd.ItemIDs, cmd.ZoneID)
	if err != nil {
		return nil, err
	}
	if len(destinations) == 0 {
		return nil, errors.ErrValidation("no items found in the specified zone")
	}

	depot, err := s.zoneDepot(ctx, zone)
	if err != nil {
		return nil, err
	}

	path := s.buildPath(ctx, zone.WarehouseID, cmd.ZoneID, depot, destinations, items, "zone")
	return ToPickingPathDTO(path), nil
}

// OptimizeBatchForOrders routes each order independently across a bounded
// worker pool. Orders that cannot be routed are skipped, not fatal.
func (s *PathOptimizerService) OptimizeBatchForOrders(ctx context.Context, cmd OptimizeOrdersCommand) ([]PickingPathDTO, error) {
	if len(cmd.OrderIDs) == 0 {
		return nil, errors.ErrValidation("at least one order is required")
	}

	paths, err := s.optimizeOrders(ctx, cmd.WarehouseID, cmd.OrderIDs)
	if err != nil {
		return nil, err
	}

	return ToPickingPathDTOs(paths), nil
}

// OptimizeOrderPaths is the domain-level variant used by the batch processor
func (s *PathOptimizerService) OptimizeOrderPaths(ctx context.Context, warehouseID string, orderIDs []string) ([]*domain.PickingPath, error) {
	return s.optimizeOrders(ctx, warehouseID, orderIDs)
}

// OptimizeZonePath is the domain-level variant used by the batch processor
func (s *PathOptimizerService) OptimizeZonePath(ctx context.Context, zoneID string, itemIDs []string) (*domain.PickingPath, error) {
	zone, err := s.zones.FindByID(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to find zone: %w", err)
	}
	if zone == nil {
		return nil, errors.ErrNotFound("zone")
	}

	items, destinations, err := s.resolveDestinations(ctx, itemIDs, zoneID)
	if err != nil {
		return nil, err
	}
	if len(destinations) == 0 {
		return nil, errors.ErrValidation("no items found in the specified zone")
	}

	depot, err := s.zoneDepot(ctx, zone)
	if err != nil {
		return nil, err
	}

	return s.buildPath(ctx, zone.WarehouseID, zoneID, depot, destinations, items, "zone"), nil
}

// OptimizeLocationSet routes a set of already-known locations within a zone.
// No inventory resolution happens; the resulting path carries no pick items.
func (s *PathOptimizerService) OptimizeLocationSet(ctx context.Context, zoneID string, locationIDs []string) (*domain.PickingPath, error) {
	if len(locationIDs) == 0 {
		return nil, errors.ErrValidation("at least one location is required")
	}

	zone, err := s.zones.FindByID(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to find zone: %w", err)
	}
	if zone == nil {
		return nil, errors.ErrNotFound("zone")
	}

	found, err := s.locations.FindByIDs(ctx, locationIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}

	byID := make(map[string]*domain.Location, len(found))
	for _, loc := range found {
		byID[loc.LocationID] = loc
	}

	destinations := make([]*domain.Location, 0, len(locationIDs))
	seen := make(map[string]bool, len(locationIDs))
	for _, id := range locationIDs {
		loc, ok := byID[id]
		if !ok {
			s.logger.Warn("Skipping unknown location", "locationId", id)
			continue
		}
		if loc.ZoneID != zoneID || seen[id] {
			continue
		}
		seen[id] = true
		destinations = append(destinations, loc)
	}
	if len(destinations) == 0 {
		return nil, errors.ErrValidation("no locations found in the specified zone")
	}

	depot, err := s.zoneDepot(ctx, zone)
	if err != nil {
		return nil, err
	}

	return s.buildPath(ctx, zone.WarehouseID, zoneID, depot, destinations, nil, "zone"), nil
}

func (s *PathOptimizerService) optimizeOrders(ctx context.Context, warehouseID string, orderIDs []string) ([]*domain.PickingPath, error) {
	depot, err := s.locations.FindDepotByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find depot: %w", err)
	}
	if depot == nil {
		return nil, errors.ErrNotFound("depot location")
	}

	results := make([]*domain.PickingPath, len(orderIDs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentOptimizations)

	for i, orderID := range orderIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, orderID string) {
			defer wg.Done()
			defer func() { <-sem }()

			path, err := s.optimizeSingleOrder(ctx, warehouseID, orderID, depot)
			if err != nil {
				s.logger.WithError(err).Warn("Skipping order in batch optimization",
					"orderId", orderID, "warehouseId", warehouseID)
				return
			}
			results[idx] = path
		}(i, orderID)
	}

	wg.Wait()

	paths := make([]*domain.PickingPath, 0, len(results))
	for _, p := range results {
		if p != nil {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func (s *PathOptimizerService) optimizeSingleOrder(ctx context.Context, warehouseID, orderID string, depot *domain.Location) (*domain.PickingPath, error) {
	itemIDs, err := s.orders.FindItemIDsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve order items: %w", err)
	}
	if len(itemIDs) == 0 {
		return nil, errors.ErrNotFound("order items")
	}

	items, destinations, err := s.resolveDestinations(ctx, itemIDs, "")
	if err != nil {
		return nil, err
	}
	if len(destinations) == 0 {
		return nil, errors.ErrValidation("none of the order items could be resolved to a location")
	}

	for i := range items {
		if items[i].OrderID == "" {
			items[i].OrderID = orderID
		}
	}

	return s.buildPath(ctx, warehouseID, "", depot, destinations, items, "order"), nil
}

// resolveDestinations resolves item ids to pick items and their distinct
// destination locations, preserving first-appearance order. Unresolvable
// items are logged and skipped so a partially-resolvable set still yields a
// usable path. When zoneID is set, locations outside the zone are filtered
// out along with their items.
func (s *PathOptimizerService) resolveDestinations(ctx context.Context, itemIDs []string, zoneID string) ([]domain.PickItem, []*domain.Location, error) {
	picks := make([]domain.PickItem, 0, len(itemIDs))
	locationOrder := make([]string, 0, len(itemIDs))
	seen := make(map[string]bool)

	for _, itemID := range itemIDs {
		inv, err := s.inventory.Resolve(ctx, itemID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve item %s: %w", itemID, err)
		}
		if inv == nil || inv.LocationID == "" {
			s.logger.Warn("Skipping unresolvable item", "itemId", itemID)
			continue
		}

		picks = append(picks, domain.PickItem{
			ItemID:     inv.ItemID,
			LocationID: inv.LocationID,
			ProductID:  inv.ProductID,
			Quantity:   inv.Quantity,
			OrderID:    inv.OrderID,
		})

		if !seen[inv.LocationID] {
			seen[inv.LocationID] = true
			locationOrder = append(locationOrder, inv.LocationID)
		}
	}

	if len(locationOrder) == 0 {
		return picks, nil, nil
	}

	found, err := s.locations.FindByIDs(ctx, locationOrder)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load locations: %w", err)
	}

	byID := make(map[string]*domain.Location, len(found))
	for _, loc := range found {
		byID[loc.LocationID] = loc
	}

	destinations := make([]*domain.Location, 0, len(locationOrder))
	for _, id := range locationOrder {
		loc, ok := byID[id]
		if !ok {
			s.logger.Warn("Skipping items at unknown location", "locationId", id)
			continue
		}
		if zoneID != "" && loc.ZoneID != zoneID {
			continue
		}
		destinations = append(destinations, loc)
	}

	// Drop picks whose location fell out during filtering
	kept := make(map[string]bool, len(destinations))
	for _, loc := range destinations {
		kept[loc.LocationID] = true
	}
	filtered := picks[:0]
	for _, p := range picks {
		if kept[p.LocationID] {
			filtered = append(filtered, p)
		}
	}

	return filtered, destinations, nil
}

func (s *PathOptimizerService) zoneDepot(ctx context.Context, zone *domain.Zone) (*domain.Location, error) {
	depot, err := s.locations.FindDepotByZone(ctx, zone.ZoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to find zone depot: %w", err)
	}
	if depot == nil {
		depot, err = s.locations.FindDepotByWarehouse(ctx, zone.WarehouseID)
		if err != nil {
			return nil, fmt.Errorf("failed to find depot: %w", err)
		}
	}
	if depot == nil {
		return nil, errors.ErrNotFound("depot location")
	}
	return depot, nil
}

func (s *PathOptimizerService) buildPath(ctx context.Context, warehouseID, zoneID string, depot *domain.Location, destinations []*domain.Location, items []domain.PickItem, scope string) *domain.PickingPath {
	start := time.Now()

	route := domain.NearestNeighborPath(depot, destinations)
	path := domain.NewPickingPath(warehouseID, zoneID, route, items)

	if s.metrics != nil {
		s.metrics.RecordPathOptimized(scope, path.TotalDistance)
	}
	s.logger.PathOptimized(ctx, path.PathID, len(destinations), path.TotalDistance, path.EstimatedTimeMinutes, time.Since(start))

	s.publishPathOptimized(ctx, path, route)

	return path
}

// publishPathOptimized emits a routing event. Paths are ephemeral, so the
// event goes straight to the broker rather than through the outbox.
func (s *PathOptimizerService) publishPathOptimized(ctx context.Context, path *domain.PickingPath, route []*domain.Location) {
	if s.producer == nil || s.eventFactory == nil {
		return
	}

	stops := make([]cloudevents.LocationStop, 0, len(route)-1)
	for _, loc := range route[1:] {
		stops = append(stops, cloudevents.LocationStop{
			LocationID: loc.LocationID,
			Zone:       loc.ZoneID,
			Aisle:      loc.Aisle,
			Rack:       loc.Rack,
			Level:      loc.Level,
			Position:   loc.Position,
		})
	}

	event := s.eventFactory.CreatePathOptimizedEvent(ctx, path.PathID, path.WarehouseID, path.ZoneID,
		stops, path.TotalDistance, path.EstimatedTimeMinutes, path.Algorithm)

	if err := s.producer.PublishEvent(ctx, kafka.Topics.RoutingEvents, event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish path optimized event", "pathId", path.PathID)
	}
}
