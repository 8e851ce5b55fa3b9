package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/warehouse-core/internal/domain"
)

type ZoneRepository struct {
	collection *mongo.Collection
}

func NewZoneRepository(db *mongo.Database) *ZoneRepository {
	collection := db.Collection("zones")

	repo := &ZoneRepository{
		collection: collection,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ZoneRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "zoneId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "warehouseId", Value: 1}, {Key: "code", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *ZoneRepository) FindByID(ctx context.Context, zoneID string) (*domain.Zone, error) {
	var zone domain.Zone
	err := r.collection.FindOne(ctx, bson.M{"zoneId": zoneID}).Decode(&zone)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &zone, err
}

func (r *ZoneRepository) FindByWarehouse(ctx context.Context, warehouseID string) ([]*domain.Zone, error) {
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"warehouseId": warehouseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var zones []*domain.Zone
	err = cursor.All(ctx, &zones)
	return zones, err
}
