package oto

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nyaruka/phonenumbers"
	"github.com/shopspring/decimal"

	"github.com/wecre8/oto/internal/domain/fulfillment"
)

// DefaultStoreName is reported as storeName unless STORE_NAME is configured
const DefaultStoreName = "WeCre8"

// privateMetadataOrderKey holds the OTO order id, written by the host when
// createOrder succeeded
const privateMetadataOrderKey = "oto_id"

// Errors for payload building. These mark missing related records that the
// payload cannot be built without.
var (
	ErrMissingOrder           = errors.New("oto: fulfillment has no order")
	ErrMissingShippingAddress = errors.New("oto: order has no shipping address")
	ErrMissingPhone           = errors.New("oto: shipping address has no phone")
	ErrMissingProductImage    = errors.New("oto: order line product has no image")
	ErrMissingPayment         = errors.New("oto: order has no payment")
)

// SiteDomainProvider resolves the domain of the current storefront site
type SiteDomainProvider interface {
	CurrentDomain(ctx context.Context) (string, error)
}

// PayloadBuilder maps fulfillments onto OTO request bodies
type PayloadBuilder struct {
	site SiteDomainProvider
}

// NewPayloadBuilder creates a payload builder that takes image hosts from site
func NewPayloadBuilder(site SiteDomainProvider) *PayloadBuilder {
	return &PayloadBuilder{site: site}
}

// RequestData returns the body for destination: a *CreateOrderRequest for
// createOrder, a *CancelOrderRequest for cancelOrder, and nil for anything else.
func (b *PayloadBuilder) RequestData(ctx context.Context, f *fulfillment.Fulfillment, cfg Config, destination string) (any, error) {
	switch destination {
	case DestinationCreateOrder:
		return b.CreateOrderData(ctx, f, cfg)
	case DestinationCancelOrder:
		return CancelOrderData(f)
	default:
		return nil, nil
	}
}

// CreateOrderData builds the createOrder body
func (b *PayloadBuilder) CreateOrderData(ctx context.Context, f *fulfillment.Fulfillment, cfg Config) (*CreateOrderRequest, error) {
	order := f.Order
	if order == nil {
		return nil, ErrMissingOrder
	}

	payment := order.LastPayment()
	if payment == nil {
		return nil, ErrMissingPayment
	}
	isCOD := payment.PaymentMethodType == PaymentMethodCOD

	items, err := b.ItemsData(ctx, order)
	if err != nil {
		return nil, err
	}
	customer, err := CustomerData(order)
	if err != nil {
		return nil, err
	}

	storeName := cfg.String(KeyStoreName)
	if storeName == "" {
		storeName = DefaultStoreName
	}

	paymentMethod := PaymentMethodPaid
	amountDue := decimal.Zero
	if isCOD {
		paymentMethod = PaymentMethodCOD
		amountDue = order.TotalNetAmount
	}

	return &CreateOrderRequest{
		StoreName:      storeName,
		Ref1:           order.Token,
		OrderID:        strconv.FormatInt(order.ID, 10),
		Currency:       order.Currency,
		Amount:         Amount(order.TotalNetAmount),
		ShippingNotes:  order.CustomerNote,
		PaymentMethod:  paymentMethod,
		Items:          items,
		Subtotal:       Amount(order.Subtotal()),
		Customer:       *customer,
		ShippingAmount: Amount(order.ShippingPriceNetAmount),
		AmountDue:      Amount(amountDue),
		OrderDate:      FormatOrderDate(order.Created),
	}, nil
}

// CancelOrderData builds the cancelOrder body from the OTO id kept in the
// order's private metadata
func CancelOrderData(f *fulfillment.Fulfillment) (*CancelOrderRequest, error) {
	if f.Order == nil {
		return nil, ErrMissingOrder
	}
	return &CancelOrderRequest{
		OrderID: f.Order.PrivateMetadataValue(privateMetadataOrderKey),
	}, nil
}

// ItemsData maps every order line, in line order
func (b *PayloadBuilder) ItemsData(ctx context.Context, order *fulfillment.Order) ([]Item, error) {
	domain, err := b.site.CurrentDomain(ctx)
	if err != nil {
		return nil, fmt.Errorf("oto: failed to resolve site domain: %w", err)
	}

	items := make([]Item, 0, len(order.Lines))
	for _, line := range order.Lines {
		if line.Variant == nil || line.Variant.Product == nil {
			return nil, fmt.Errorf("%w: line %d has no product", ErrMissingProductImage, line.ID)
		}
		product := line.Variant.Product
		image := product.FirstImage()
		if image == nil {
			return nil, fmt.Errorf("%w: product %d", ErrMissingProductImage, product.ID)
		}

		items = append(items, Item{
			SKU:       line.ProductSKU,
			Name:      line.ProductName,
			Quantity:  line.QuantityFulfilled,
			ProductID: product.ID,
			Price:     Amount(line.TotalPriceNetAmount),
			Image:     domain + image.URL,
		})
	}
	return items, nil
}

// CustomerData maps the customer and shipping address. The street line is
// StreetAddress1, or StreetAddress2 when the first is empty.
func CustomerData(order *fulfillment.Order) (*Customer, error) {
	addr := order.ShippingAddress
	if addr == nil {
		return nil, ErrMissingShippingAddress
	}
	mobile, err := formatE164(addr.Phone, addr.Country)
	if err != nil {
		return nil, err
	}

	var name string
	if order.User != nil {
		name = order.User.FullName()
	}

	street := addr.StreetAddress1
	if street == "" {
		street = addr.StreetAddress2
	}

	return &Customer{
		Name:     name,
		Email:    order.CustomerEmail(),
		City:     addr.City,
		District: addr.CityArea,
		Mobile:   mobile,
		Country:  addr.Country,
		Postcode: addr.PostalCode,
		Address:  street,
	}, nil
}

// FormatOrderDate renders t in UTC as DD/MM/YYYY H:M. Hour and minute are
// not zero-padded: 2023-01-05 09:07 UTC renders "05/01/2023 9:7".
func FormatOrderDate(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s %d:%d", t.Format("02/01/2006"), t.Hour(), t.Minute())
}

func formatE164(phone, region string) (string, error) {
	if phone == "" {
		return "", ErrMissingPhone
	}
	num, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", fmt.Errorf("oto: invalid phone %q: %w", phone, err)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
