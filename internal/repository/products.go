package repository

import (
	"context"

	"catalog-service/internal/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoProductRepository struct {
	col *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{col: db.Collection(productsCollection)}
}

func (m *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	return findOne[model.Product](ctx, m.col, bson.M{"_id": id})
}

// FindPage devuelve hasta limit productos en orden de inserción.
func (m *MongoProductRepository) FindPage(ctx context.Context, skip, limit int64) ([]*model.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	return findAll[model.Product](ctx, m.col, bson.M{}, opts)
}

func (m *MongoProductRepository) Insert(ctx context.Context, p *model.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Reviews == nil {
		p.Reviews = []primitive.ObjectID{}
	}
	_, err := m.col.InsertOne(ctx, p)
	return errors.Wrap(err, "inserting product")
}

// Update reemplaza los campos escalares y la imagen; reviews y dueño no se tocan.
func (m *MongoProductRepository) Update(ctx context.Context, p *model.Product) error {
	update := bson.M{
		"$set": bson.M{
			"name":     p.Name,
			"price":    p.Price,
			"desc":     p.Desc,
			"qty":      p.Qty,
			"img":      p.Img,
			"category": p.Category,
		},
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	return matched(res, err, "updating product")
}

func (m *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting product")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustQty suma delta al stock si el producto pertenece a owner y el
// resultado no queda negativo. Si la guarda falla devuelve ErrNotFound.
func (m *MongoProductRepository) AdjustQty(ctx context.Context, id, owner primitive.ObjectID, delta int) error {
	filter := bson.M{"_id": id}
	if !owner.IsZero() {
		filter["user"] = owner
	}
	if delta < 0 {
		filter["qty"] = bson.M{"$gte": -delta}
	}
	res, err := m.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"qty": delta}})
	return matched(res, err, "adjusting product qty")
}

func (m *MongoProductRepository) PushReview(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	res, err := m.col.UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$push": bson.M{"reviews": reviewID}},
	)
	return matched(res, err, "pushing review")
}
