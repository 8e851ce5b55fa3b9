package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/warehouse-core/internal/domain"
)

type StaffRepository struct {
	collection *mongo.Collection
}

func NewStaffRepository(db *mongo.Database) *StaffRepository {
	collection := db.Collection("staff")

	repo := &StaffRepository{
		collection: collection,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *StaffRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "staffId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "warehouseId", Value: 1}, {Key: "status", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *StaffRepository) FindByID(ctx context.Context, staffID string) (*domain.Staff, error) {
	var staff domain.Staff
	err := r.collection.FindOne(ctx, bson.M{"staffId": staffID}).Decode(&staff)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &staff, err
}

func (r *StaffRepository) FindActiveByWarehouse(ctx context.Context, warehouseID string) ([]*domain.Staff, error) {
	opts := options.Find().SetSort(bson.D{{Key: "staffId", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{
		"warehouseId": warehouseID,
		"status":      domain.StaffStatusActive,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var staff []*domain.Staff
	err = cursor.All(ctx, &staff)
	return staff, err
}
