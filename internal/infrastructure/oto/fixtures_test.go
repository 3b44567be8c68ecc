package oto

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wecre8/oto/internal/domain/fulfillment"
)

type staticDomain string

func (d staticDomain) CurrentDomain(context.Context) (string, error) {
	return string(d), nil
}

type failingDomain struct{}

func (failingDomain) CurrentDomain(context.Context) (string, error) {
	return "", errors.New("site lookup failed")
}

func newTestFulfillment(paymentMethod string) *fulfillment.Fulfillment {
	created := time.Date(2023, time.January, 5, 9, 7, 0, 0, time.UTC)
	return &fulfillment.Fulfillment{
		ID:               42,
		FulfillmentOrder: 1,
		Status:           fulfillment.StatusFulfilled,
		Order: &fulfillment.Order{
			ID:                     1001,
			Token:                  "b7a1c3d2-token",
			Currency:               "SAR",
			TotalNetAmount:         decimal.RequireFromString("150.50"),
			ShippingPriceNetAmount: decimal.RequireFromString("20.50"),
			Created:                created,
			CustomerNote:           "Leave at the door",
			UserEmail:              "guest@example.com",
			User: &fulfillment.User{
				ID:        7,
				Email:     "layla@example.com",
				FirstName: "Layla",
				LastName:  "Haddad",
			},
			ShippingAddress: &fulfillment.Address{
				FirstName:      "Layla",
				LastName:       "Haddad",
				City:           "Riyadh",
				CityArea:       "Olaya",
				Phone:          "0501234567",
				Country:        "SA",
				PostalCode:     "12211",
				StreetAddress1: "King Fahd Road 12",
				StreetAddress2: "Apt 4",
			},
			Lines: []fulfillment.OrderLine{
				{
					ID:                  1,
					ProductSKU:          "SKU-RED",
					ProductName:         "Red Abaya",
					Quantity:            2,
					QuantityFulfilled:   2,
					TotalPriceNetAmount: decimal.RequireFromString("100.00"),
					Variant: &fulfillment.ProductVariant{
						ID:  11,
						SKU: "SKU-RED",
						Product: &fulfillment.Product{
							ID:   501,
							Name: "Abaya",
							Images: []fulfillment.ProductImage{
								{ID: 2, URL: "/media/products/abaya-back.jpg", SortOrder: 1},
								{ID: 1, URL: "/media/products/abaya.jpg", SortOrder: 0},
							},
						},
					},
				},
				{
					ID:                  2,
					ProductSKU:          "SKU-SCARF",
					ProductName:         "Silk Scarf",
					Quantity:            1,
					QuantityFulfilled:   1,
					TotalPriceNetAmount: decimal.RequireFromString("30.00"),
					Variant: &fulfillment.ProductVariant{
						ID:  12,
						SKU: "SKU-SCARF",
						Product: &fulfillment.Product{
							ID:     502,
							Name:   "Scarf",
							Images: []fulfillment.ProductImage{{ID: 3, URL: "/media/products/scarf.jpg"}},
						},
					},
				},
			},
			Payments: []fulfillment.Payment{
				{ID: 1, PaymentMethodType: "card", Created: created.Add(-time.Hour)},
				{ID: 2, PaymentMethodType: paymentMethod, Created: created},
			},
			PrivateMetadata: fulfillment.Metadata{"oto_id": json.Number("987654")},
		},
	}
}
