package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/warehouse-core/internal/domain"
)

type LocationRepository struct {
	collection *mongo.Collection
}

func NewLocationRepository(db *mongo.Database) *LocationRepository {
	collection := db.Collection("locations")

	repo := &LocationRepository{
		collection: collection,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *LocationRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "locationId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "barcode", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "zoneId", Value: 1}}},
		{Keys: bson.D{{Key: "zoneId", Value: 1}, {Key: "isDepot", Value: 1}}},
		{Keys: bson.D{{Key: "warehouseId", Value: 1}, {Key: "isDepot", Value: 1}}},
		{Keys: bson.D{{Key: "zoneId", Value: 1}, {Key: "aisle", Value: 1}, {Key: "rack", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *LocationRepository) FindByID(ctx context.Context, locationID string) (*domain.Location, error) {
	var location domain.Location
	err := r.collection.FindOne(ctx, bson.M{"locationId": locationID}).Decode(&location)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &location, err
}

func (r *LocationRepository) FindByIDs(ctx context.Context, locationIDs []string) ([]*domain.Location, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"locationId": bson.M{"$in": locationIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var locations []*domain.Location
	err = cursor.All(ctx, &locations)
	return locations, err
}

func (r *LocationRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Location, error) {
	var location domain.Location
	err := r.collection.FindOne(ctx, bson.M{"barcode": barcode}).Decode(&location)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &location, err
}

func (r *LocationRepository) FindByZone(ctx context.Context, zoneID string) ([]*domain.Location, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "aisle", Value: 1},
		{Key: "rack", Value: 1},
		{Key: "level", Value: 1},
		{Key: "position", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{"zoneId": zoneID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var locations []*domain.Location
	err = cursor.All(ctx, &locations)
	return locations, err
}

func (r *LocationRepository) FindDepotByZone(ctx context.Context, zoneID string) (*domain.Location, error) {
	var location domain.Location
	err := r.collection.FindOne(ctx, bson.M{"zoneId": zoneID, "isDepot": true}).Decode(&location)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &location, err
}

func (r *LocationRepository) FindDepotByWarehouse(ctx context.Context, warehouseID string) (*domain.Location, error) {
	var location domain.Location
	err := r.collection.FindOne(ctx, bson.M{"warehouseId": warehouseID, "isDepot": true}).Decode(&location)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &location, err
}
