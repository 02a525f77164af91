package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyAuth             = errors.New("missing authorization")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrEmptyCouponCode       = errors.New("coupon code is empty")
	ErrEmptySessionID        = errors.New("missing session id")
	ErrGuestContactRequired  = errors.New("guest orders require email, first name and last name")
	ErrLineNotFound          = errors.New("cart line not found")
	ErrLoginRequired         = errors.New("login required to apply coupon")
	ErrNoShippingFee         = errors.New("no shipping fee selected")
	ErrNoShippingTarget      = errors.New("no shipping address selected")
	ErrOrderInFlight         = errors.New("an order submission is already in progress")
	ErrPaymentMethodRequired = errors.New("payment method required for prepaid orders")
	ErrTokenInvalid          = errors.New("invalid token")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
