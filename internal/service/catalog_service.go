package service

import (
	"context"
	"errors"
	"io"
	"math"

	"catalog-service/internal/dto"
	"catalog-service/internal/model"
	"catalog-service/internal/repository"
	"catalog-service/internal/storage"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	deletedUser     = "Deleted User"
	defaultPageSize = 20
)

type Repositories struct {
	Products ProductRepository
	Users    UserRepository
	Orders   OrderRepository
	Reviews  ReviewRepository
	Tx       Transactor
}

type ProductInput struct {
	Name     string
	Price    float64
	Desc     string
	Qty      int
	Category string
}

// ImageUpload es el archivo "picture" del formulario; nil si no se subió.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

type ReviewInput struct {
	OrderID string
	Rating  int
	Comment string
}

type QuantityChange struct {
	ProductID string
	Qty       int
}

type CatalogService struct {
	products ProductRepository
	users    UserRepository
	orders   OrderRepository
	reviews  ReviewRepository
	tx       Transactor
	images   ImageStore
	events   EventPublisher
	log      zerolog.Logger
	pageSize int
}

func NewCatalogService(r Repositories, images ImageStore, events EventPublisher, log zerolog.Logger, pageSize int) *CatalogService {
	if events == nil {
		events = noopPublisher{}
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &CatalogService{
		products: r.Products,
		users:    r.Users,
		orders:   r.Orders,
		reviews:  r.Reviews,
		tx:       r.Tx,
		images:   images,
		events:   events,
		log:      log.With().Str("component", "catalog").Logger(),
		pageSize: pageSize,
	}
}

// GetProduct devuelve el producto con su dueño y reseñas desnormalizados.
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*dto.ProductDTO, error) {
	p, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out, err := s.denormalize(ctx, []*model.Product{p})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ListProducts devuelve una página (base 1) de a lo sumo pageSize productos.
func (s *CatalogService) ListProducts(ctx context.Context, page int) ([]dto.ProductDTO, error) {
	if page < 1 {
		page = 1
	}
	// Páginas más allá del rango de skip están vacías.
	if int64(page-1) > math.MaxInt64/int64(s.pageSize) {
		return []dto.ProductDTO{}, nil
	}
	skip := int64(page-1) * int64(s.pageSize)
	products, err := s.products.FindPage(ctx, skip, int64(s.pageSize))
	if err != nil {
		return nil, err
	}
	return s.denormalize(ctx, products)
}

func (s *CatalogService) CreateProduct(ctx context.Context, userID string, in ProductInput, img *ImageUpload) (*model.Product, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Merchant {
		return nil, ErrNotMerchant
	}
	if !model.Category(in.Category).Valid() {
		return nil, ErrInvalidCategory
	}

	key, err := s.saveImage(ctx, img)
	if err != nil {
		return nil, err
	}

	p := &model.Product{
		Name:     in.Name,
		Price:    in.Price,
		Desc:     in.Desc,
		Qty:      in.Qty,
		Img:      key,
		Category: model.Category(in.Category),
		UserID:   user.ID,
	}

	// El producto y la lista del merchant se guardan juntos.
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p.ID = primitive.NilObjectID
		if err := s.products.Insert(ctx, p); err != nil {
			return err
		}
		return s.users.AddProduct(ctx, user.ID, p.ID)
	})
	if err != nil {
		s.deleteImage(ctx, key)
		return nil, err
	}

	s.publish(ctx, Event{Name: EventProductCreated, ProductID: p.ID.Hex(), UserID: user.ID.Hex()})
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, userID, productID string, in ProductInput, img *ImageUpload) (*model.Product, error) {
	uid, err := repository.ParseID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	p, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.UserID != uid {
		return nil, ErrWrongOwner
	}
	if !model.Category(in.Category).Valid() {
		return nil, ErrInvalidCategory
	}

	// La imagen nueva se guarda antes; la vieja se borra recién después del update.
	newKey, err := s.saveImage(ctx, img)
	if err != nil {
		return nil, err
	}
	oldKey := p.Img

	p.Name = in.Name
	p.Price = in.Price
	p.Desc = in.Desc
	p.Qty = in.Qty
	p.Category = model.Category(in.Category)
	if newKey != "" {
		p.Img = newKey
	}

	if err := s.products.Update(ctx, p); err != nil {
		s.deleteImage(ctx, newKey)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if newKey != "" {
		s.deleteImage(ctx, oldKey)
	}

	s.publish(ctx, Event{Name: EventProductUpdated, ProductID: p.ID.Hex(), UserID: uid.Hex()})
	return p, nil
}

// DeleteProduct solo procede si el producto está en la lista del usuario.
func (s *CatalogService) DeleteProduct(ctx context.Context, userID, productID string) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	pid, err := repository.ParseID(productID)
	if err != nil || !user.OwnsProduct(pid) {
		return ErrWrongOwner
	}
	p, err := s.products.FindByID(ctx, pid)
	if err != nil {
		return notFoundAs(err, ErrProductNotFound)
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.products.Delete(ctx, pid); err != nil {
			return notFoundAs(err, ErrProductNotFound)
		}
		return s.users.RemoveProduct(ctx, user.ID, pid)
	})
	if err != nil {
		return err
	}
	s.deleteImage(ctx, p.Img)

	s.publish(ctx, Event{Name: EventProductDeleted, ProductID: pid.Hex(), UserID: user.ID.Hex()})
	return nil
}

// PostReview exige que la orden sea del comprador, que tenga una línea para
// el producto, que esté completada y que no haya sido reseñada.
func (s *CatalogService) PostReview(ctx context.Context, userID, productID string, in ReviewInput) (*model.Review, *model.Product, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, nil, ErrInvalidRating
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	pid, err := repository.ParseID(productID)
	if err != nil {
		return nil, nil, ErrProductNotFound
	}
	oid, err := repository.ParseID(in.OrderID)
	if err != nil || !user.HasPurchase(oid) {
		return nil, nil, ErrReviewNotAllowed
	}

	order, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		return nil, nil, notFoundAs(err, ErrReviewNotAllowed)
	}
	line := order.Line(pid)
	if line == nil || !line.Reviewable() {
		return nil, nil, ErrReviewNotAllowed
	}

	p, err := s.products.FindByID(ctx, pid)
	if err != nil {
		return nil, nil, notFoundAs(err, ErrProductNotFound)
	}

	rev := &model.Review{
		UserID:    user.ID,
		ProductID: pid,
		Rating:    in.Rating,
		Comment:   in.Comment,
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// Guarda condicional: dos pedidos simultáneos no pueden reseñar la misma línea.
		if err := s.orders.MarkReviewed(ctx, oid, pid); err != nil {
			return notFoundAs(err, ErrReviewNotAllowed)
		}
		rev.ID = primitive.NilObjectID
		if err := s.reviews.Insert(ctx, rev); err != nil {
			return err
		}
		return notFoundAs(s.products.PushReview(ctx, pid, rev.ID), ErrProductNotFound)
	})
	if err != nil {
		return nil, nil, err
	}
	p.Reviews = append(p.Reviews, rev.ID)

	s.publish(ctx, Event{
		Name:      EventReviewPosted,
		ProductID: pid.Hex(),
		UserID:    user.ID.Hex(),
		Data:      map[string]any{"orderId": oid.Hex(), "rating": rev.Rating},
	})
	return rev, p, nil
}

// UpdateQuantities aplica el lote completo o nada. Primero valida cada ítem
// (dueño y stock resultante >= 0, sumando los ítems repetidos) y luego aplica
// con las mismas guardas dentro de la transacción.
func (s *CatalogService) UpdateQuantities(ctx context.Context, userID string, items []QuantityChange) error {
	uid, err := repository.ParseID(userID)
	if err != nil {
		return ErrUserNotFound
	}

	ids := make([]primitive.ObjectID, len(items))
	valid := make([]bool, len(items))
	totals := make(map[primitive.ObjectID]int, len(items))
	for i, it := range items {
		pid, err := repository.ParseID(it.ProductID)
		if err != nil {
			continue
		}
		ids[i], valid[i] = pid, true
		totals[pid] += it.Qty
	}

	found := make(map[primitive.ObjectID]*model.Product, len(totals))
	var failed []string
	for i, it := range items {
		if !valid[i] {
			failed = append(failed, it.ProductID)
			continue
		}
		p, seen := found[ids[i]]
		if !seen {
			p, err = s.products.FindByID(ctx, ids[i])
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			found[ids[i]] = p
		}
		if p == nil || p.UserID != uid || p.Qty+totals[ids[i]] < 0 {
			failed = append(failed, it.ProductID)
		}
	}
	if len(failed) > 0 {
		return &QuantityError{Failed: failed}
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var failed []string
		for i, it := range items {
			err := s.products.AdjustQty(ctx, ids[i], uid, it.Qty)
			if errors.Is(err, repository.ErrNotFound) {
				failed = append(failed, it.ProductID)
				continue
			}
			if err != nil {
				return err
			}
		}
		if len(failed) > 0 {
			return &QuantityError{Failed: failed}
		}
		return nil
	})
	if err != nil {
		return err
	}

	changes := make(map[string]int, len(items))
	for _, it := range items {
		changes[it.ProductID] += it.Qty
	}
	s.publish(ctx, Event{Name: EventQuantityUpdated, UserID: uid.Hex(), Data: map[string]any{"products": changes}})
	return nil
}

// ReserveStock descuenta stock por órdenes colocadas. Los artículos sin stock
// suficiente o inexistentes se saltean; devuelve cuántos se reservaron. Todo
// corre en una transacción: ante un error no queda nada descontado y el
// mensaje puede reintentarse.
func (s *CatalogService) ReserveStock(ctx context.Context, orderID string, items []QuantityChange) (int, error) {
	var reserved []QuantityChange
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		reserved = reserved[:0]
		for _, it := range items {
			if it.Qty <= 0 {
				continue
			}
			pid, err := repository.ParseID(it.ProductID)
			if err != nil {
				s.log.Warn().Str("order_id", orderID).Str("product_id", it.ProductID).Msg("invalid product id in placed order")
				continue
			}
			err = s.products.AdjustQty(ctx, pid, primitive.NilObjectID, -it.Qty)
			if errors.Is(err, repository.ErrNotFound) {
				s.log.Warn().Str("order_id", orderID).Str("product_id", it.ProductID).Int("qty", it.Qty).
					Msg("product missing or out of stock, not reserved")
				continue
			}
			if err != nil {
				return err
			}
			reserved = append(reserved, it)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, it := range reserved {
		s.publish(ctx, Event{Name: EventStockReserved, ProductID: it.ProductID, Data: map[string]any{"orderId": orderID, "qty": it.Qty}})
	}
	return len(reserved), nil
}

func (s *CatalogService) findUser(ctx context.Context, userID string) (*model.User, error) {
	uid, err := repository.ParseID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return u, nil
}

func (s *CatalogService) findProduct(ctx context.Context, productID string) (*model.Product, error) {
	pid, err := repository.ParseID(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	p, err := s.products.FindByID(ctx, pid)
	if err != nil {
		return nil, notFoundAs(err, ErrProductNotFound)
	}
	return p, nil
}

// denormalize resuelve reseñas y usuarios de todos los productos con dos consultas.
func (s *CatalogService) denormalize(ctx context.Context, products []*model.Product) ([]dto.ProductDTO, error) {
	var reviewIDs []primitive.ObjectID
	for _, p := range products {
		reviewIDs = append(reviewIDs, p.Reviews...)
	}
	reviews, err := s.reviews.FindByIDs(ctx, reviewIDs)
	if err != nil {
		return nil, err
	}
	reviewByID := make(map[primitive.ObjectID]*model.Review, len(reviews))
	for _, r := range reviews {
		reviewByID[r.ID] = r
	}

	seen := map[primitive.ObjectID]bool{}
	var userIDs []primitive.ObjectID
	addUser := func(id primitive.ObjectID) {
		if !id.IsZero() && !seen[id] {
			seen[id] = true
			userIDs = append(userIDs, id)
		}
	}
	for _, p := range products {
		addUser(p.UserID)
	}
	for _, r := range reviews {
		addUser(r.UserID)
	}
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	usernames := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		usernames[u.ID] = u.Username
	}
	username := func(id primitive.ObjectID) string {
		if name, ok := usernames[id]; ok {
			return name
		}
		return deletedUser
	}

	out := make([]dto.ProductDTO, 0, len(products))
	for _, p := range products {
		v := dto.ProductDTO{
			ID:       p.ID.Hex(),
			Name:     p.Name,
			Price:    p.Price,
			Desc:     p.Desc,
			Qty:      p.Qty,
			Img:      p.Img,
			Category: string(p.Category),
			User:     dto.OwnerDTO{UserID: p.UserID.Hex(), Username: username(p.UserID)},
			Reviews:  []dto.ReviewDTO{},
		}
		for _, rid := range p.Reviews {
			r, ok := reviewByID[rid]
			if !ok {
				continue
			}
			v.Reviews = append(v.Reviews, dto.ReviewDTO{Rating: r.Rating, Comment: r.Comment, User: username(r.UserID)})
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *CatalogService) saveImage(ctx context.Context, img *ImageUpload) (string, error) {
	if img == nil || img.Filename == "" {
		return "", nil
	}
	key, err := s.images.Save(ctx, img.Filename, img.Body)
	if errors.Is(err, storage.ErrUnsupportedFormat) || errors.Is(err, storage.ErrCorruptImage) {
		return "", ErrIncorrectPicFormat
	}
	return key, err
}

func (s *CatalogService) deleteImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.log.Error().Err(err).Str("image", key).Msg("could not delete product image")
	}
}

// publish no falla la operación: el evento es informativo.
func (s *CatalogService) publish(ctx context.Context, e Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn().Err(err).Str("event", e.Name).Msg("could not publish catalog event")
	}
}

func notFoundAs(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
