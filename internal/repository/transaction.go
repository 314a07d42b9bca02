package repository

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTransactor ejecuta varias escrituras dentro de una transacción.
// Con enabled=false (mongod standalone, sin replica set) la función corre directo.
type MongoTransactor struct {
	client  *mongo.Client
	enabled bool
}

func NewMongoTransactor(client *mongo.Client, enabled bool) *MongoTransactor {
	return &MongoTransactor{client: client, enabled: enabled}
}

func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}

	sess, err := t.client.StartSession()
	if err != nil {
		return errors.Wrap(err, "starting mongo session")
	}
	defer sess.EndSession(ctx)

	// El SessionContext se pasa como ctx a los repositorios para que
	// sus operaciones queden dentro de la transacción.
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
