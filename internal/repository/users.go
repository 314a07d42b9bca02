package repository

import (
	"context"

	"catalog-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: db.Collection(usersCollection)}
}

func (m *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return findOne[model.User](ctx, m.col, bson.M{"_id": id})
}

func (m *MongoUserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	return findAll[model.User](ctx, m.col, bson.M{"_id": bson.M{"$in": ids}})
}

func (m *MongoUserRepository) AddProduct(ctx context.Context, userID, productID primitive.ObjectID) error {
	res, err := m.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"products": productID}},
	)
	return matched(res, err, "adding product to user")
}

func (m *MongoUserRepository) RemoveProduct(ctx context.Context, userID, productID primitive.ObjectID) error {
	res, err := m.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"products": productID}},
	)
	return matched(res, err, "removing product from user")
}
