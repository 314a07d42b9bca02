// models.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusShipped   Status = "Shipped"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

type Category string

const (
	CategoryFashion     Category = "Fashion & Accessories"
	CategoryElectronics Category = "Electronics"
	CategoryToys        Category = "Toys & Games"
	CategoryHome        Category = "Home & Living"
)

var categories = map[Category]bool{
	CategoryFashion:     true,
	CategoryElectronics: true,
	CategoryToys:        true,
	CategoryHome:        true,
}

func (c Category) Valid() bool {
	return categories[c]
}

// User es el dueño de productos (merchant) y/o comprador.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username  string               `bson:"username" json:"username"`
	Merchant  bool                 `bson:"merchant" json:"merchant"`
	Products  []primitive.ObjectID `bson:"products" json:"products"`
	Purchases []primitive.ObjectID `bson:"purchases" json:"purchases"`
}

func (u *User) OwnsProduct(id primitive.ObjectID) bool {
	return containsID(u.Products, id)
}

func (u *User) HasPurchase(id primitive.ObjectID) bool {
	return containsID(u.Purchases, id)
}

type Product struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name     string               `bson:"name" json:"name"`
	Price    float64              `bson:"price" json:"price"`
	Desc     string               `bson:"desc" json:"desc"`
	Qty      int                  `bson:"qty" json:"qty"`
	Img      string               `bson:"img" json:"img"`
	Category Category             `bson:"category" json:"category"`
	UserID   primitive.ObjectID   `bson:"user" json:"userId"`
	Reviews  []primitive.ObjectID `bson:"reviews" json:"reviews"`
}

type Order struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"user" json:"userId"`
	Products []OrderLine        `bson:"products" json:"products"`
}

// OrderLine es la entrada por producto dentro de una orden.
type OrderLine struct {
	ProductID       primitive.ObjectID `bson:"product" json:"productId"`
	Qty             int                `bson:"qty" json:"qty"`
	Status          Status             `bson:"status" json:"status"`
	AlreadyReviewed bool               `bson:"already_reviewed" json:"alreadyReviewed"`
}

// Line devuelve la línea de la orden para el producto, o nil.
func (o *Order) Line(productID primitive.ObjectID) *OrderLine {
	for i := range o.Products {
		if o.Products[i].ProductID == productID {
			return &o.Products[i]
		}
	}
	return nil
}

// Reviewable: la línea está completada y todavía no fue reseñada.
func (l *OrderLine) Reviewable() bool {
	return l.Status == StatusCompleted && !l.AlreadyReviewed
}

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"userId"`
	ProductID primitive.ObjectID `bson:"product" json:"productId"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
