package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCategory_Valid(t *testing.T) {
	assert.True(t, CategoryElectronics.Valid())
	assert.True(t, Category("Home & Living").Valid())
	assert.False(t, Category("Groceries").Valid())
	assert.False(t, Category("").Valid())
}

func TestOrder_Line(t *testing.T) {
	p1, p2 := primitive.NewObjectID(), primitive.NewObjectID()
	o := &Order{Products: []OrderLine{
		{ProductID: p1, Status: StatusCompleted},
		{ProductID: p2, Status: StatusPending},
	}}

	line := o.Line(p2)
	if assert.NotNil(t, line) {
		assert.Equal(t, StatusPending, line.Status)
	}
	assert.Nil(t, o.Line(primitive.NewObjectID()))
}

func TestOrderLine_Reviewable(t *testing.T) {
	assert.True(t, (&OrderLine{Status: StatusCompleted}).Reviewable())
	assert.False(t, (&OrderLine{Status: StatusCompleted, AlreadyReviewed: true}).Reviewable())
	assert.False(t, (&OrderLine{Status: StatusShipped}).Reviewable())
}

func TestUser_Ownership(t *testing.T) {
	p, o := primitive.NewObjectID(), primitive.NewObjectID()
	u := &User{Products: []primitive.ObjectID{p}, Purchases: []primitive.ObjectID{o}}

	assert.True(t, u.OwnsProduct(p))
	assert.False(t, u.OwnsProduct(o))
	assert.True(t, u.HasPurchase(o))
	assert.False(t, u.HasPurchase(p))
}
