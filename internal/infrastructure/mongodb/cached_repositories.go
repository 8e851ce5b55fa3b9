package mongodb

import (
	"context"
	"time"

	"github.com/wms-platform/warehouse-core/internal/domain"
	"github.com/wms-platform/warehouse-core/pkg/cache"
)

// Warehouse topology changes rarely compared to how often the optimizer
// reads it, so location and zone lookups sit behind a short TTL cache.

// CachedLocationRepository decorates a LocationRepository with a TTL cache
// keyed by location id. Only positive lookups are cached.
type CachedLocationRepository struct {
	inner  domain.LocationRepository
	byID   *cache.Cache[string, *domain.Location]
	depots *cache.Cache[string, *domain.Location]
}

func NewCachedLocationRepository(inner domain.LocationRepository, ttl time.Duration) *CachedLocationRepository {
	return &CachedLocationRepository{
		inner:  inner,
		byID:   cache.New[string, *domain.Location](ttl),
		depots: cache.New[string, *domain.Location](ttl),
	}
}

func (r *CachedLocationRepository) FindByID(ctx context.Context, locationID string) (*domain.Location, error) {
	if loc, ok := r.byID.Get(locationID); ok {
		return loc, nil
	}
	loc, err := r.inner.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc != nil {
		r.byID.Set(locationID, loc)
	}
	return loc, nil
}

func (r *CachedLocationRepository) FindByIDs(ctx context.Context, locationIDs []string) ([]*domain.Location, error) {
	found := make([]*domain.Location, 0, len(locationIDs))
	var missing []string
	for _, id := range locationIDs {
		if loc, ok := r.byID.Get(id); ok {
			found = append(found, loc)
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return found, nil
	}

	fetched, err := r.inner.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, loc := range fetched {
		r.byID.Set(loc.LocationID, loc)
		found = append(found, loc)
	}
	return found, nil
}

func (r *CachedLocationRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Location, error) {
	return r.inner.FindByBarcode(ctx, barcode)
}

func (r *CachedLocationRepository) FindByZone(ctx context.Context, zoneID string) ([]*domain.Location, error) {
	return r.inner.FindByZone(ctx, zoneID)
}

func (r *CachedLocationRepository) FindDepotByZone(ctx context.Context, zoneID string) (*domain.Location, error) {
	key := "zone:" + zoneID
	if depot, ok := r.depots.Get(key); ok {
		return depot, nil
	}
	depot, err := r.inner.FindDepotByZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if depot != nil {
		r.depots.Set(key, depot)
	}
	return depot, nil
}

func (r *CachedLocationRepository) FindDepotByWarehouse(ctx context.Context, warehouseID string) (*domain.Location, error) {
	key := "warehouse:" + warehouseID
	if depot, ok := r.depots.Get(key); ok {
		return depot, nil
	}
	depot, err := r.inner.FindDepotByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if depot != nil {
		r.depots.Set(key, depot)
	}
	return depot, nil
}

// Invalidate drops all cached locations and depots
func (r *CachedLocationRepository) Invalidate() {
	r.byID.InvalidateAll()
	r.depots.InvalidateAll()
}

// CachedZoneRepository decorates a ZoneRepository with a TTL cache.
type CachedZoneRepository struct {
	inner domain.ZoneRepository
	byID  *cache.Cache[string, *domain.Zone]
}

func NewCachedZoneRepository(inner domain.ZoneRepository, ttl time.Duration) *CachedZoneRepository {
	return &CachedZoneRepository{
		inner: inner,
		byID:  cache.New[string, *domain.Zone](ttl),
	}
}

func (r *CachedZoneRepository) FindByID(ctx context.Context, zoneID string) (*domain.Zone, error) {
	if zone, ok := r.byID.Get(zoneID); ok {
		return zone, nil
	}
	zone, err := r.inner.FindByID(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if zone != nil {
		r.byID.Set(zoneID, zone)
	}
	return zone, nil
}

func (r *CachedZoneRepository) FindByWarehouse(ctx context.Context, warehouseID string) ([]*domain.Zone, error) {
	return r.inner.FindByWarehouse(ctx, warehouseID)
}

// Invalidate drops all cached zones
func (r *CachedZoneRepository) Invalidate() {
	r.byID.InvalidateAll()
}
