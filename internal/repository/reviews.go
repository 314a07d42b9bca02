package repository

import (
	"context"
	"time"

	"catalog-service/internal/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoReviewRepository struct {
	col *mongo.Collection
}

func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{col: db.Collection(reviewsCollection)}
}

func (m *MongoReviewRepository) Insert(ctx context.Context, r *model.Review) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := m.col.InsertOne(ctx, r)
	return errors.Wrap(err, "inserting review")
}

func (m *MongoReviewRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Review, error) {
	if len(ids) == 0 {
		return []*model.Review{}, nil
	}
	return findAll[model.Review](ctx, m.col, bson.M{"_id": bson.M{"$in": ids}})
}
