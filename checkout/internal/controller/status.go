package controller

import (
	"errors"
	"net/http"

	"github.com/kirananta/storefront/checkout/internal/client"
	inErrors "github.com/kirananta/storefront/internal/errors"
)

// statusCodeFrom maps service errors to HTTP status codes. Backend
// rejections carry their upstream status; network failures to the backend
// surface as a bad gateway.
func statusCodeFrom(err error) int {
	apiErr := &client.APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	switch {
	case errors.Is(err, inErrors.ErrLoginRequired),
		errors.Is(err, inErrors.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, inErrors.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrOrderInFlight):
		return http.StatusConflict
	case errors.Is(err, inErrors.ErrEmptyCart),
		errors.Is(err, inErrors.ErrEmptyCouponCode),
		errors.Is(err, inErrors.ErrEmptySessionID),
		errors.Is(err, inErrors.ErrGuestContactRequired),
		errors.Is(err, inErrors.ErrNoShippingFee),
		errors.Is(err, inErrors.ErrNoShippingTarget),
		errors.Is(err, inErrors.ErrPaymentMethodRequired):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrBackendUnreachable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
