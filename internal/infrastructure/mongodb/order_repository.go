package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderRepository resolves orders to the item ids they contain.
type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	collection := db.Collection("order_items")

	repo := &OrderRepository{
		collection: collection,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *OrderRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderId", Value: 1}, {Key: "itemId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *OrderRepository) FindItemIDsByOrder(ctx context.Context, orderID string) ([]string, error) {
	opts := options.Find().SetSort(bson.D{{Key: "itemId", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"orderId": orderID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ItemID string `bson:"itemId"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	itemIDs := make([]string, len(rows))
	for i, row := range rows {
		itemIDs[i] = row.ItemID
	}
	return itemIDs, nil
}
