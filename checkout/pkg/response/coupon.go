package response

import (
	"github.com/shopspring/decimal"
)

const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

// Coupon is the server-validated discount bound to a draft. The discount
// amount is always the backend's number; it is never recomputed locally
// from type and value. CartTotal records the total the coupon was
// validated against so the draft can drop it when the cart changes.
type Coupon struct {
	Code           string          `json:"code"`
	Type           string          `json:"type"`
	Value          decimal.Decimal `json:"value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	CartTotal      decimal.Decimal `json:"cart_total"`
}
