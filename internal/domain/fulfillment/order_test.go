package fulfillment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_LastPayment(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("returns nil without payments", func(t *testing.T) {
		order := &Order{}
		assert.Nil(t, order.LastPayment())
	})

	t.Run("returns payment with highest ID", func(t *testing.T) {
		order := &Order{Payments: []Payment{
			{ID: 3, PaymentMethodType: "cod", Created: base.Add(time.Hour)},
			{ID: 1, PaymentMethodType: "card", Created: base.Add(2 * time.Hour)},
			{ID: 2, PaymentMethodType: "card", Created: base},
		}}

		last := order.LastPayment()
		require.NotNil(t, last)
		assert.Equal(t, int64(3), last.ID)
		assert.Equal(t, "cod", last.PaymentMethodType)
	})

	t.Run("ignores creation time when IDs disagree", func(t *testing.T) {
		order := &Order{Payments: []Payment{
			{ID: 9, Created: base},
			{ID: 7, Created: base.Add(time.Hour)},
		}}

		assert.Equal(t, int64(9), order.LastPayment().ID)
	})

	t.Run("points into the payments slice", func(t *testing.T) {
		order := &Order{Payments: []Payment{{ID: 5}}}
		assert.Same(t, &order.Payments[0], order.LastPayment())
	})

	t.Run("does not reorder the payments slice", func(t *testing.T) {
		order := &Order{Payments: []Payment{
			{ID: 2, Created: base.Add(time.Minute)},
			{ID: 1, Created: base},
		}}
		_ = order.LastPayment()
		assert.Equal(t, int64(2), order.Payments[0].ID)
	})
}

func TestOrder_Subtotal(t *testing.T) {
	order := &Order{Lines: []OrderLine{
		{TotalPriceNetAmount: decimal.RequireFromString("10.50")},
		{TotalPriceNetAmount: decimal.RequireFromString("4.25")},
	}}
	assert.True(t, decimal.RequireFromString("14.75").Equal(order.Subtotal()))

	empty := &Order{}
	assert.True(t, decimal.Zero.Equal(empty.Subtotal()))
}

func TestOrder_CustomerEmail(t *testing.T) {
	t.Run("prefers user email", func(t *testing.T) {
		order := &Order{UserEmail: "checkout@example.com", User: &User{Email: "account@example.com"}}
		assert.Equal(t, "account@example.com", order.CustomerEmail())
	})

	t.Run("falls back to checkout email for guests", func(t *testing.T) {
		order := &Order{UserEmail: "guest@example.com"}
		assert.Equal(t, "guest@example.com", order.CustomerEmail())
	})
}

func TestOrder_PrivateMetadataValue(t *testing.T) {
	order := &Order{PrivateMetadata: Metadata{"oto_id": "OTO-1"}}
	assert.Equal(t, "OTO-1", order.PrivateMetadataValue("oto_id"))
	assert.Nil(t, order.PrivateMetadataValue("missing"))

	assert.Nil(t, (&Order{}).PrivateMetadataValue("oto_id"))
}

func TestProduct_FirstImage(t *testing.T) {
	t.Run("nil without images", func(t *testing.T) {
		assert.Nil(t, (&Product{}).FirstImage())
	})

	t.Run("lowest sort order wins", func(t *testing.T) {
		p := &Product{Images: []ProductImage{
			{ID: 1, URL: "/media/b.jpg", SortOrder: 2},
			{ID: 2, URL: "/media/a.jpg", SortOrder: 0},
			{ID: 3, URL: "/media/c.jpg", SortOrder: 0},
		}}
		assert.Equal(t, "/media/a.jpg", p.FirstImage().URL)
	})
}

func TestUser_FullName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"first and last", User{FirstName: "Sara", LastName: "Ali"}, "Sara Ali"},
		{"first only", User{FirstName: "Sara"}, "Sara"},
		{"billing address fallback", User{DefaultBillingAddress: &Address{FirstName: "Omar", LastName: "Saleh"}}, "Omar Saleh"},
		{"nothing known", User{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.FullName())
		})
	}
}
