package service

import (
	"context"
	"io"
	"maps"
	"sync"
	"testing"

	"catalog-service/internal/model"
	"catalog-service/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockProducts struct{ mock.Mock }

func (m *mockProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *mockProducts) FindPage(ctx context.Context, skip, limit int64) ([]*model.Product, error) {
	args := m.Called(ctx, skip, limit)
	p, _ := args.Get(0).([]*model.Product)
	return p, args.Error(1)
}

func (m *mockProducts) Insert(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProducts) Update(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProducts) AdjustQty(ctx context.Context, id, owner primitive.ObjectID, delta int) error {
	return m.Called(ctx, id, owner, delta).Error(0)
}

func (m *mockProducts) PushReview(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	return m.Called(ctx, productID, reviewID).Error(0)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	args := m.Called(ctx, ids)
	u, _ := args.Get(0).([]*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) AddProduct(ctx context.Context, userID, productID primitive.ObjectID) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *mockUsers) RemoveProduct(ctx context.Context, userID, productID primitive.ObjectID) error {
	return m.Called(ctx, userID, productID).Error(0)
}

type mockOrders struct{ mock.Mock }

func (m *mockOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func (m *mockOrders) MarkReviewed(ctx context.Context, orderID, productID primitive.ObjectID) error {
	return m.Called(ctx, orderID, productID).Error(0)
}

type mockReviews struct{ mock.Mock }

func (m *mockReviews) Insert(ctx context.Context, r *model.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockReviews) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Review, error) {
	args := m.Called(ctx, ids)
	r, _ := args.Get(0).([]*model.Review)
	return r, args.Error(1)
}

type mockImages struct{ mock.Mock }

func (m *mockImages) Save(ctx context.Context, filename string, src io.Reader) (string, error) {
	args := m.Called(ctx, filename, src)
	return args.String(0), args.Error(1)
}

func (m *mockImages) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// passthroughTx corre la función sin transacción real.
type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// stockRepo guarda el stock en memoria con las mismas guardas que AdjustQty
// en Mongo. failOnce hace fallar la primera llamada para ese producto.
type stockRepo struct {
	mockProducts
	qty      map[primitive.ObjectID]int
	failOnce map[primitive.ObjectID]error
	calls    map[primitive.ObjectID]int
}

func (r *stockRepo) AdjustQty(_ context.Context, id, _ primitive.ObjectID, delta int) error {
	r.calls[id]++
	if err, ok := r.failOnce[id]; ok {
		delete(r.failOnce, id)
		return err
	}
	q, ok := r.qty[id]
	if !ok || q+delta < 0 {
		return repository.ErrNotFound
	}
	r.qty[id] = q + delta
	return nil
}

// snapshotTx descarta los cambios de stock si la función falla, como un abort.
type snapshotTx struct{ repo *stockRepo }

func (tx snapshotTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := maps.Clone(tx.repo.qty)
	if err := fn(ctx); err != nil {
		tx.repo.qty = saved
		return err
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

type catalogFixture struct {
	service  *CatalogService
	products *mockProducts
	users    *mockUsers
	orders   *mockOrders
	reviews  *mockReviews
	images   *mockImages
	events   *recordingPublisher
}

func createTestCatalogService(t *testing.T) *catalogFixture {
	t.Helper()
	fx := &catalogFixture{
		products: &mockProducts{},
		users:    &mockUsers{},
		orders:   &mockOrders{},
		reviews:  &mockReviews{},
		images:   &mockImages{},
		events:   &recordingPublisher{},
	}
	fx.service = NewCatalogService(Repositories{
		Products: fx.products,
		Users:    fx.users,
		Orders:   fx.orders,
		Reviews:  fx.reviews,
		Tx:       passthroughTx{},
	}, fx.images, fx.events, zerolog.Nop(), 20)

	t.Cleanup(func() {
		fx.products.AssertExpectations(t)
		fx.users.AssertExpectations(t)
		fx.orders.AssertExpectations(t)
		fx.reviews.AssertExpectations(t)
		fx.images.AssertExpectations(t)
	})
	return fx
}
