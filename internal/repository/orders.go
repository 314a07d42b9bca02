package repository

import (
	"context"

	"catalog-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Las órdenes pertenecen al servicio de órdenes; acá solo se lee y se marca la reseña.
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection(ordersCollection)}
}

func (m *MongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	return findOne[model.Order](ctx, m.col, bson.M{"_id": id})
}

// MarkReviewed marca la línea del producto como reseñada solo si está
// completada y no fue reseñada antes; si no, ErrNotFound.
func (m *MongoOrderRepository) MarkReviewed(ctx context.Context, orderID, productID primitive.ObjectID) error {
	filter := bson.M{
		"_id": orderID,
		"products": bson.M{
			"$elemMatch": bson.M{
				"product":          productID,
				"status":           model.StatusCompleted,
				"already_reviewed": bson.M{"$ne": true},
			},
		},
	}
	update := bson.M{
		"$set": bson.M{"products.$.already_reviewed": true},
	}
	res, err := m.col.UpdateOne(ctx, filter, update)
	return matched(res, err, "marking order line reviewed")
}
