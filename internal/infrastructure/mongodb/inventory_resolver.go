package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/warehouse-core/internal/domain"
)

// InventoryResolver looks up which location stocks an item. Items with no
// stock record resolve to nil rather than an error.
type InventoryResolver struct {
	collection *mongo.Collection
}

func NewInventoryResolver(db *mongo.Database) *InventoryResolver {
	collection := db.Collection("inventory_items")

	resolver := &InventoryResolver{
		collection: collection,
	}
	resolver.ensureIndexes(context.Background())
	return resolver
}

func (r *InventoryResolver) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "itemId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "locationId", Value: 1}}},
		{Keys: bson.D{{Key: "productId", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *InventoryResolver) Resolve(ctx context.Context, itemID string) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := r.collection.FindOne(ctx, bson.M{"itemId": itemID}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &item, err
}
