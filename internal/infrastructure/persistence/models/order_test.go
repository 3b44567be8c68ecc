package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderModel_ToDomainNormalizesTimesToUTC(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*3600)
	created := time.Date(2023, 1, 5, 12, 7, 0, 0, riyadh)

	m := &OrderModel{
		ID:        1001,
		CreatedAt: created,
		Payments: []PaymentModel{
			{ID: 4, PaymentMethodType: "cod", CreatedAt: created},
		},
	}

	order := m.ToDomain()
	assert.Equal(t, time.UTC, order.Created.Location())
	assert.True(t, created.Equal(order.Created))
	assert.Equal(t, 9, order.Created.Hour())

	require.Len(t, order.Payments, 1)
	assert.Equal(t, time.UTC, order.Payments[0].Created.Location())
	assert.True(t, created.Equal(order.Payments[0].Created))
}
