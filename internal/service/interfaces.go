package service

import (
	"context"
	"io"

	"catalog-service/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interfaces que deben implementar repository, storage y rabbit.

type ProductRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
	FindPage(ctx context.Context, skip, limit int64) ([]*model.Product, error)
	Insert(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AdjustQty(ctx context.Context, id, owner primitive.ObjectID, delta int) error
	PushReview(ctx context.Context, productID, reviewID primitive.ObjectID) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error)
	AddProduct(ctx context.Context, userID, productID primitive.ObjectID) error
	RemoveProduct(ctx context.Context, userID, productID primitive.ObjectID) error
}

type OrderRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error)
	MarkReviewed(ctx context.Context, orderID, productID primitive.ObjectID) error
}

type ReviewRepository interface {
	Insert(ctx context.Context, r *model.Review) error
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Review, error)
}

type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ImageStore interface {
	Save(ctx context.Context, filename string, src io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// Event es lo que se publica en el exchange catalog_events.
type Event struct {
	Name      string         `json:"event"`
	ProductID string         `json:"productId,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

const (
	EventProductCreated  = "product_created"
	EventProductUpdated  = "product_updated"
	EventProductDeleted  = "product_deleted"
	EventQuantityUpdated = "quantity_updated"
	EventStockReserved   = "stock_reserved"
	EventReviewPosted    = "review_posted"
)

type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }
