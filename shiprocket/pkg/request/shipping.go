package request

import "github.com/shopspring/decimal"

type OrderItem struct {
	Name     string          `validate:"required"    json:"name"`
	SKU      string          `validate:"required"    json:"sku"`
	Units    int32           `validate:"gte=1"       json:"units"`
	Price    decimal.Decimal `validate:"required"    json:"selling_price"`
	Discount decimal.Decimal `validate:"omitempty"   json:"discount"`
}

type CreateOrder struct {
	OrderID         string          `validate:"required"            json:"order_id"`
	OrderDate       string          `validate:"required"            json:"order_date"`
	PickupLocation  string          `validate:"required"            json:"pickup_location"`
	BillingName     string          `validate:"required"            json:"billing_customer_name"`
	BillingLastName string          `validate:"omitempty"           json:"billing_last_name"`
	BillingAddress  string          `validate:"required"            json:"billing_address"`
	BillingCity     string          `validate:"required"            json:"billing_city"`
	BillingPincode  string          `validate:"required"            json:"billing_pincode"`
	BillingState    string          `validate:"required"            json:"billing_state"`
	BillingCountry  string          `validate:"required"            json:"billing_country"`
	BillingEmail    string          `validate:"required,email"      json:"billing_email"`
	BillingPhone    string          `validate:"required"            json:"billing_phone"`
	ShippingIsBilling bool          `json:"shipping_is_billing"`
	PaymentMethod   string          `validate:"required,oneof=COD Prepaid" json:"payment_method"`
	SubTotal        decimal.Decimal `validate:"required"            json:"sub_total"`
	Length          decimal.Decimal `validate:"required"            json:"length"`
	Breadth         decimal.Decimal `validate:"required"            json:"breadth"`
	Height          decimal.Decimal `validate:"required"            json:"height"`
	Weight          decimal.Decimal `validate:"required"            json:"weight"`
	Items           []OrderItem     `validate:"required,min=1,dive" json:"order_items"`
}

type GenerateLabel struct {
	ShipmentIDs []int64 `validate:"required,min=1" json:"shipment_id"`
}

type RequestPickup struct {
	ShipmentIDs []int64 `validate:"required,min=1" json:"shipment_id"`
}

type CancelShipment struct {
	AWBs []string `validate:"required,min=1" json:"awbs"`
}
