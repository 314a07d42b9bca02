package repository

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound se devuelve cuando el documento no existe o el filtro de guarda no coincide.
var ErrNotFound = errors.New("document not found")

// Colecciones (mismos nombres que usa el resto del marketplace).
const (
	usersCollection    = "user"
	productsCollection = "product"
	ordersCollection   = "order"
	reviewsCollection  = "review"
)

// ParseID convierte un id hex en ObjectID. Un id inválido cuenta como inexistente.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return id, nil
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter any) (*T, error) {
	var res T
	err := col.FindOne(ctx, filter).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "finding in %s", col.Name())
	}
	return &res, nil
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter any, opts ...*options.FindOptions) ([]*T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "querying %s", col.Name())
	}
	defer cur.Close(ctx)

	out := []*T{}
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, pkgerrors.Wrapf(err, "decoding %s", col.Name())
		}
		out = append(out, &v)
	}
	if err := cur.Err(); err != nil {
		return nil, pkgerrors.Wrapf(err, "iterating %s", col.Name())
	}
	return out, nil
}

// matched traduce un UpdateResult sin coincidencias en ErrNotFound.
func matched(res *mongo.UpdateResult, err error, op string) error {
	if err != nil {
		return pkgerrors.Wrap(err, op)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
