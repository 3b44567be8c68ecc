package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wecre8/oto/internal/domain/fulfillment"
)

// AddressModel is the persistence model for a postal address
type AddressModel struct {
	ID             int64  `gorm:"primaryKey"`
	FirstName      string `gorm:"type:varchar(256)"`
	LastName       string `gorm:"type:varchar(256)"`
	StreetAddress1 string `gorm:"type:varchar(256)"`
	StreetAddress2 string `gorm:"type:varchar(256)"`
	City           string `gorm:"type:varchar(256)"`
	CityArea       string `gorm:"type:varchar(128)"`
	PostalCode     string `gorm:"type:varchar(20)"`
	Country        string `gorm:"type:varchar(2)"`
	Phone          string `gorm:"type:varchar(128)"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "addresses"
}

// ToDomain converts the persistence model to a domain Address
func (m *AddressModel) ToDomain() *fulfillment.Address {
	return &fulfillment.Address{
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		City:           m.City,
		CityArea:       m.CityArea,
		Phone:          m.Phone,
		Country:        m.Country,
		PostalCode:     m.PostalCode,
		StreetAddress1: m.StreetAddress1,
		StreetAddress2: m.StreetAddress2,
	}
}

// UserModel is the persistence model for a customer account
type UserModel struct {
	ID                      int64         `gorm:"primaryKey"`
	Email                   string        `gorm:"type:varchar(254);uniqueIndex;not null"`
	FirstName               string        `gorm:"type:varchar(256)"`
	LastName                string        `gorm:"type:varchar(256)"`
	DefaultBillingAddressID *int64        `gorm:"index"`
	DefaultBillingAddress   *AddressModel `gorm:"foreignKey:DefaultBillingAddressID"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *fulfillment.User {
	u := &fulfillment.User{
		ID:        m.ID,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
	}
	if m.DefaultBillingAddress != nil {
		u.DefaultBillingAddress = m.DefaultBillingAddress.ToDomain()
	}
	return u
}

// OrderModel is the persistence model for an order
type OrderModel struct {
	ID                     int64           `gorm:"primaryKey"`
	Token                  string          `gorm:"type:varchar(36);uniqueIndex;not null"`
	Currency               string          `gorm:"type:varchar(3);not null"`
	TotalNetAmount         decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	ShippingPriceNetAmount decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	CustomerNote           string          `gorm:"type:text"`
	UserEmail              string          `gorm:"type:varchar(254)"`
	UserID                 *int64          `gorm:"index"`
	User                   *UserModel      `gorm:"foreignKey:UserID"`
	ShippingAddressID      *int64
	ShippingAddress        *AddressModel    `gorm:"foreignKey:ShippingAddressID"`
	Lines                  []OrderLineModel `gorm:"foreignKey:OrderID"`
	Payments               []PaymentModel   `gorm:"foreignKey:OrderID"`
	PrivateMetadata        JSONMap          `gorm:"type:jsonb"`
	CreatedAt              time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model and its loaded relations to a domain Order
func (m *OrderModel) ToDomain() *fulfillment.Order {
	o := &fulfillment.Order{
		ID:                     m.ID,
		Token:                  m.Token,
		Currency:               m.Currency,
		TotalNetAmount:         m.TotalNetAmount,
		ShippingPriceNetAmount: m.ShippingPriceNetAmount,
		Created:                m.CreatedAt.UTC(),
		CustomerNote:           m.CustomerNote,
		UserEmail:              m.UserEmail,
		Lines:                  make([]fulfillment.OrderLine, len(m.Lines)),
		Payments:               make([]fulfillment.Payment, len(m.Payments)),
		PrivateMetadata:        fulfillment.Metadata(m.PrivateMetadata),
	}
	if m.User != nil {
		o.User = m.User.ToDomain()
	}
	if m.ShippingAddress != nil {
		o.ShippingAddress = m.ShippingAddress.ToDomain()
	}
	for i := range m.Lines {
		o.Lines[i] = m.Lines[i].ToDomain()
	}
	for i := range m.Payments {
		o.Payments[i] = m.Payments[i].ToDomain()
	}
	return o
}

// OrderLineModel is the persistence model for an order line
type OrderLineModel struct {
	ID                  int64                `gorm:"primaryKey"`
	OrderID             int64                `gorm:"not null;index"`
	ProductSKU          string               `gorm:"type:varchar(255)"`
	ProductName         string               `gorm:"type:varchar(386);not null"`
	Quantity            int                  `gorm:"not null"`
	QuantityFulfilled   int                  `gorm:"not null;default:0"`
	TotalPriceNetAmount decimal.Decimal      `gorm:"type:decimal(12,3);not null;default:0"`
	VariantID           *int64               `gorm:"index"`
	Variant             *ProductVariantModel `gorm:"foreignKey:VariantID"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ToDomain converts the persistence model to a domain OrderLine
func (m *OrderLineModel) ToDomain() fulfillment.OrderLine {
	line := fulfillment.OrderLine{
		ID:                  m.ID,
		ProductSKU:          m.ProductSKU,
		ProductName:         m.ProductName,
		Quantity:            m.Quantity,
		QuantityFulfilled:   m.QuantityFulfilled,
		TotalPriceNetAmount: m.TotalPriceNetAmount,
	}
	if m.Variant != nil {
		line.Variant = m.Variant.ToDomain()
	}
	return line
}

// PaymentModel is the persistence model for a payment attempt
type PaymentModel struct {
	ID                int64     `gorm:"primaryKey"`
	OrderID           int64     `gorm:"not null;index"`
	PaymentMethodType string    `gorm:"type:varchar(256)"`
	CreatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() fulfillment.Payment {
	return fulfillment.Payment{
		ID:                m.ID,
		PaymentMethodType: m.PaymentMethodType,
		Created:           m.CreatedAt.UTC(),
	}
}

// FulfillmentModel is the persistence model for a fulfillment
type FulfillmentModel struct {
	ID               int64              `gorm:"primaryKey"`
	FulfillmentOrder int                `gorm:"not null"`
	Status           fulfillment.Status `gorm:"type:varchar(32);not null"`
	OrderID          int64              `gorm:"not null;index"`
	Order            *OrderModel        `gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FulfillmentModel) TableName() string {
	return "fulfillments"
}

// ToDomain converts the persistence model to a domain Fulfillment
func (m *FulfillmentModel) ToDomain() *fulfillment.Fulfillment {
	f := &fulfillment.Fulfillment{
		ID:               m.ID,
		FulfillmentOrder: m.FulfillmentOrder,
		Status:           m.Status,
	}
	if m.Order != nil {
		f.Order = m.Order.ToDomain()
	}
	return f
}
