package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentTypeCod is the only payment type derived server-side; prepaid
// orders carry the shopper's chosen method (upi, card) verbatim.
const PaymentTypeCod = "cod"

// BackendOrder is the order the storefront backend created.
type BackendOrder struct {
	Status      string          `json:"status"`
	PaymentType string          `json:"payment_type"`
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
}

// GatewayOrder references a Razorpay order the payment widget is opened
// with. Amount is in the gateway's minor currency unit (paise).
type GatewayOrder struct {
	ID       string `json:"id"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
	Amount   int64  `json:"amount"`
}

// PlacedOrder is the checkout outcome: a completed cod order, or a
// pending prepaid order paired with the gateway handoff.
type PlacedOrder struct {
	Gateway     *GatewayOrder   `json:"gateway,omitempty"`
	Status      string          `json:"status"`
	PaymentType string          `json:"payment_type"`
	OrderID     uuid.UUID       `json:"order_id"`
	Amount      decimal.Decimal `json:"amount"`
	Completed   bool            `json:"completed"`
}
