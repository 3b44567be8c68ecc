package fulfillment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Metadata is a free-form key-value store attached to an order
type Metadata map[string]any

// Order represents a customer order placed on the host platform
type Order struct {
	ID       int64
	Token    string
	Currency string

	TotalNetAmount         decimal.Decimal
	ShippingPriceNetAmount decimal.Decimal

	Created      time.Time
	CustomerNote string

	// UserEmail is the checkout email, used for guest orders
	UserEmail       string
	User            *User
	ShippingAddress *Address

	// Lines are kept in insertion order
	Lines    []OrderLine
	Payments []Payment

	PrivateMetadata Metadata
}

// LastPayment returns the payment with the highest ID, which is the host's
// most recent attempt, or nil when the order has none.
func (o *Order) LastPayment() *Payment {
	var last *Payment
	for i := range o.Payments {
		if last == nil || o.Payments[i].ID > last.ID {
			last = &o.Payments[i]
		}
	}
	return last
}

// Subtotal returns the net subtotal: the sum of all line net totals
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.TotalPriceNetAmount)
	}
	return total
}

// CustomerEmail returns the user's email for registered customers and
// the checkout email otherwise
func (o *Order) CustomerEmail() string {
	if o.User != nil {
		return o.User.Email
	}
	return o.UserEmail
}

// PrivateMetadataValue returns the value stored under key in the order's
// private metadata, or nil when absent
func (o *Order) PrivateMetadataValue(key string) any {
	if o.PrivateMetadata == nil {
		return nil
	}
	return o.PrivateMetadata[key]
}

// OrderLine is a single purchased variant within an order
type OrderLine struct {
	ID                  int64
	ProductSKU          string
	ProductName         string
	Quantity            int
	QuantityFulfilled   int
	TotalPriceNetAmount decimal.Decimal
	Variant             *ProductVariant
}

// ProductVariant is the purchasable unit referenced by an order line
type ProductVariant struct {
	ID      int64
	SKU     string
	Product *Product
}

// Product groups variants and owns the media
type Product struct {
	ID     int64
	Name   string
	Images []ProductImage
}

// ProductImage is a product media item. URL is a site-relative path.
type ProductImage struct {
	ID        int64
	URL       string
	SortOrder int
}

// FirstImage returns the image with the lowest sort order, or nil
func (p *Product) FirstImage() *ProductImage {
	var first *ProductImage
	for i := range p.Images {
		if first == nil || p.Images[i].SortOrder < first.SortOrder {
			first = &p.Images[i]
		}
	}
	return first
}

// Address is a postal address with contact phone
type Address struct {
	FirstName      string
	LastName       string
	City           string
	CityArea       string
	Phone          string
	Country        string // ISO 3166-1 alpha-2
	PostalCode     string
	StreetAddress1 string
	StreetAddress2 string
}

// User is a registered customer account
type User struct {
	ID                    int64
	Email                 string
	FirstName             string
	LastName              string
	DefaultBillingAddress *Address
}

// FullName returns the user's first and last name, falling back to the
// names on the default billing address
func (u *User) FullName() string {
	if u.FirstName != "" || u.LastName != "" {
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	if u.DefaultBillingAddress != nil {
		return strings.TrimSpace(u.DefaultBillingAddress.FirstName + " " + u.DefaultBillingAddress.LastName)
	}
	return ""
}

// Payment is a payment attempt recorded against an order
type Payment struct {
	ID                int64
	PaymentMethodType string
	Created           time.Time
}
