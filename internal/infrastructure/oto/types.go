package oto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request Payloads
// ---------------------------------------------------------------------------

// Amount is a money value serialized as a bare JSON number
type Amount decimal.Decimal

// MarshalJSON implements json.Marshaler
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*a = Amount(d)
	return nil
}

// Decimal returns the underlying decimal value
func (a Amount) Decimal() decimal.Decimal {
	return decimal.Decimal(a)
}

// CreateOrderRequest is the body of the createOrder API
type CreateOrderRequest struct {
	StoreName      string   `json:"storeName"`
	Ref1           string   `json:"ref1"`
	OrderID        string   `json:"orderId"`
	Currency       string   `json:"currency"`
	Amount         Amount   `json:"amount"`
	ShippingNotes  string   `json:"shippingNotes"`
	PaymentMethod  string   `json:"payment_method"`
	Items          []Item   `json:"items"`
	Subtotal       Amount   `json:"subtotal"`
	Customer       Customer `json:"customer"`
	ShippingAmount Amount   `json:"shippingAmount"`
	AmountDue      Amount   `json:"amount_due"`
	OrderDate      string   `json:"orderDate"`
}

// Item is one order line in a createOrder request
type Item struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	ProductID int64  `json:"productId"`
	Price     Amount `json:"price"`
	Image     string `json:"image"`
}

// Customer is the consignee block of a createOrder request
type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	City     string `json:"city"`
	District string `json:"district"`
	Mobile   string `json:"mobile"`
	Country  string `json:"country"`
	Postcode string `json:"postcode"`
	Address  string `json:"address"`
}

// CancelOrderRequest is the body of the cancelOrder API. OrderID carries
// whatever was stored in the order's private metadata, so it stays untyped.
type CancelOrderRequest struct {
	OrderID any `json:"orderId"`
}

// Payment methods reported to OTO
const (
	PaymentMethodCOD  = "cod"
	PaymentMethodPaid = "paid"
)

// ---------------------------------------------------------------------------
// Task Payload
// ---------------------------------------------------------------------------

// TaskSendRequest is the scheduler task name for an OTO API call
const TaskSendRequest = "send_oto_request"

// SendRequestTask is the serialized argument set of TaskSendRequest
type SendRequestTask struct {
	FulfillmentID int64  `json:"fulfillment_id"`
	Destination   string `json:"destination"`
	Config        Config `json:"config"`
}
