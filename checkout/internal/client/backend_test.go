package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirananta/storefront/internal/config"
	"github.com/kirananta/storefront/internal/session"
)

func newTestBackend(t *testing.T, handler http.Handler) *Backend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewBackend(config.Backend{BaseURL: server.URL, TimeoutSeconds: 5})
}

func TestBackendSurfacesRejectionMessageVerbatim(t *testing.T) {
	backend := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"minimum purchase of 1000 not met"}`))
	}))

	_, err := backend.ValidateCoupon(
		context.Background(),
		session.Session{Authenticated: true},
		"SAVE10",
		decimal.NewFromInt(500),
	)

	require.Error(t, err)
	apiErr := &APIError{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "minimum purchase of 1000 not met", apiErr.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}

func TestBackendNetworkFailureIsMarked(t *testing.T) {
	backend := NewBackend(config.Backend{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1})

	err := backend.ClearCart(context.Background(), session.Session{Authenticated: true})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnreachable)
}

func TestBackendFetchCartDerivesTotal(t *testing.T) {
	backend := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cart", r.URL.Path)
		_, _ = w.Write([]byte(`{"lines":[
			{"id":"6f1c6f4e-0000-4000-8000-000000000001","product_id":"6f1c6f4e-0000-4000-8000-000000000002","name":"linen shirt","unit_price":"500","quantity":2},
			{"id":"6f1c6f4e-0000-4000-8000-000000000003","product_id":"6f1c6f4e-0000-4000-8000-000000000004","name":"wool socks","unit_price":"120","quantity":1}
		]}`))
	}))

	snapshot, err := backend.FetchCart(context.Background(), session.Session{Authenticated: true})

	require.NoError(t, err)
	require.Len(t, snapshot.Lines, 2)
	assert.True(t, decimal.NewFromInt(1120).Equal(snapshot.Total))
}

func TestBackendFetchShippingFeesNormalizesWrappedBody(t *testing.T) {
	backend := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shipping-fees", r.URL.Path)
		_, _ = w.Write([]byte(`{"shippingFees":[{"id":3,"orderType":"cod","fee":"49","isDefault":true}]}`))
	}))

	fees, err := backend.FetchShippingFees(context.Background())

	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.EqualValues(t, 3, fees[0].ID)
	assert.True(t, fees[0].IsDefault)
}

func TestBackendValidateCouponBindsCartTotal(t *testing.T) {
	backend := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/coupons/validate", r.URL.Path)
		_, _ = w.Write([]byte(`{"code":"SAVE10","type":"percentage","value":"10","discount_amount":"50"}`))
	}))

	total := decimal.NewFromInt(500)
	coupon, err := backend.ValidateCoupon(
		context.Background(),
		session.Session{Authenticated: true},
		"SAVE10",
		total,
	)

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(coupon.DiscountAmount))
	assert.True(t, total.Equal(coupon.CartTotal))
}

func TestBackendGuestOrdersUseGuestPath(t *testing.T) {
	var gotPath string
	backend := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"id":"6f1c6f4e-0000-4000-8000-000000000009","status":"pending","payment_type":"cod","amount":"550"}`))
	}))

	_, err := backend.CreateOrder(context.Background(), session.Session{}, OrderPayload{})
	require.NoError(t, err)
	assert.Equal(t, "/api/orders/guest", gotPath)

	_, err = backend.CreateOrder(context.Background(), session.Session{Authenticated: true}, OrderPayload{})
	require.NoError(t, err)
	assert.Equal(t, "/api/orders", gotPath)
}
