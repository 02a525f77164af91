package client

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kirananta/storefront/checkout/internal/otel"
	"github.com/kirananta/storefront/checkout/pkg/request"
	"github.com/kirananta/storefront/checkout/pkg/response"
	"github.com/kirananta/storefront/internal/config"
	"github.com/kirananta/storefront/internal/errors"
	inHttp "github.com/kirananta/storefront/internal/http"
	"github.com/kirananta/storefront/internal/log"
	"github.com/kirananta/storefront/internal/session"
)

// ErrBackendUnreachable marks transport-level failures talking to the
// backend, as opposed to responses the backend produced itself.
var ErrBackendUnreachable = stdErrors.New("backend unreachable")

// APIError carries a backend 4xx/5xx through to the UI layer with the
// backend's message verbatim.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return e.Message
}

// Backend is the storefront REST API client. Every mutation helper is
// paired with a read-back by the services consuming it; the client itself
// is a thin, traced HTTP adapter.
type Backend struct {
	httpClient *http.Client
	baseURL    string
}

func NewBackend(cfg config.Backend) *Backend {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Backend{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

func (b *Backend) do(
	c context.Context,
	method string,
	path string,
	sess *session.Session,
	body interface{},
	out interface{},
) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Backend do").
		Str(log.KeyRequestMethod, method).
		Str(log.KeyRequestURL, b.baseURL+path).
		Logger()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed marshaling request body with error=%w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(c, method, b.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed creating request with error=%w", err)
	}
	req.Header.Set(inHttp.HeaderContentType, inHttp.HeaderValueJson)
	req.Header.Set(inHttp.KeyHeaderRequestID, log.RequestIDFromContext(c))
	if sess != nil && sess.Authenticated && sess.Token != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token.Raw)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w with error=%v", ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed reading backend response with error=%w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := struct {
			Message string `json:"message"`
		}{}
		if err := json.Unmarshal(respBody, &message); err != nil || message.Message == "" {
			message.Message = fmt.Sprintf("backend returned status code=%d", resp.StatusCode)
		}
		logger.Error().
			Int("statusCode", resp.StatusCode).
			Msgf("backend returned status code=%d with message=%s", resp.StatusCode, message.Message)
		return &APIError{StatusCode: resp.StatusCode, Message: message.Message}
	}

	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = respBody
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed unmarshaling backend response with error=%w", err)
	}
	return nil
}

func (b *Backend) FetchCart(
	c context.Context,
	sess session.Session,
) (response.CartSnapshot, error) {
	c, span := otel.Tracer.Start(c, "Backend FetchCart")
	defer span.End()

	out := struct {
		Lines []response.CartLine `json:"lines"`
	}{}
	if err := b.do(c, http.MethodGet, "/api/cart", &sess, nil, &out); err != nil {
		err = fmt.Errorf("failed fetching cart with error=%w", err)
		errors.HandleError(err, span)
		return response.CartSnapshot{}, err
	}
	return response.NewCartSnapshot(out.Lines), nil
}

func (b *Backend) AddCartItem(c context.Context, sess session.Session, param request.AddLine) error {
	c, span := otel.Tracer.Start(c, "Backend AddCartItem")
	defer span.End()

	if err := b.do(c, http.MethodPost, "/api/cart/items", &sess, param, nil); err != nil {
		err = fmt.Errorf("failed adding cart item with error=%w", err)
		errors.HandleError(err, span)
		return err
	}
	return nil
}

func (b *Backend) UpdateCartItem(
	c context.Context,
	sess session.Session,
	productID uuid.UUID,
	quantity int32,
) error {
	c, span := otel.Tracer.Start(c, "Backend UpdateCartItem")
	defer span.End()

	body := map[string]interface{}{"quantity": quantity}
	path := "/api/cart/items/" + productID.String()
	if err := b.do(c, http.MethodPut, path, &sess, body, nil); err != nil {
		err = fmt.Errorf("failed updating cart item with error=%w", err)
		errors.HandleError(err, span)
		return err
	}
	return nil
}

func (b *Backend) RemoveCartItem(
	c context.Context,
	sess session.Session,
	productID uuid.UUID,
) error {
	c, span := otel.Tracer.Start(c, "Backend RemoveCartItem")
	defer span.End()

	path := "/api/cart/items/" + productID.String()
	if err := b.do(c, http.MethodDelete, path, &sess, nil, nil); err != nil {
		err = fmt.Errorf("failed removing cart item with error=%w", err)
		errors.HandleError(err, span)
		return err
	}
	return nil
}

func (b *Backend) ClearCart(c context.Context, sess session.Session) error {
	c, span := otel.Tracer.Start(c, "Backend ClearCart")
	defer span.End()

	if err := b.do(c, http.MethodDelete, "/api/cart", &sess, nil, nil); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		errors.HandleError(err, span)
		return err
	}
	return nil
}

func (b *Backend) ListAddresses(
	c context.Context,
	sess session.Session,
) ([]response.ShippingAddress, error) {
	c, span := otel.Tracer.Start(c, "Backend ListAddresses")
	defer span.End()

	addresses := []response.ShippingAddress{}
	if err := b.do(c, http.MethodGet, "/api/shipping-addresses", &sess, nil, &addresses); err != nil {
		err = fmt.Errorf("failed listing addresses with error=%w", err)
		errors.HandleError(err, span)
		return nil, err
	}
	return addresses, nil
}

func (b *Backend) CreateAddress(
	c context.Context,
	sess session.Session,
	param request.Address,
) error {
	c, span := otel.Tracer.Start(c, "Backend CreateAddress")
	defer span.End()

	if err := b.do(c, http.MethodPost, "/api/shipping-addresses", &sess, param, nil); err != nil {
		err = fmt.Errorf("failed creating address with error=%w", err)
		errors.HandleError(err, span)
		return err
	}
	return nil
}

func (b *Backend) UpdateAddress(
	c context.Context,
	sess session.Session,
	addressID int64,
	param request.Address,
) error {
	c, span := otel.Tracer.Start(c, "Backend UpdateAddress")
	defer span.End()

	path := fmt.Sprintf("/api/shipping-addresses/%d", addressID)
	if err := b.do(c, http.MethodPut, path, &sess, param, nil); err != nil {
		err = fmt.Errorf("failed updating addressId=%d with error=%w", addressID, err)
		errors.HandleError(err, span)
		return err
	}
	return nil
}

func (b *Backend) DeleteAddress(c context.Context, sess session.Session, addressID int64) error {
	c, span := otel.Tracer.Start(c, "Backend DeleteAddress")
	defer span.End()

	path := fmt.Sprintf("/api/shipping-addresses/%d", addressID)
	if err := b.do(c, http.MethodDelete, path, &sess, nil, nil); err != nil {
		err = fmt.Errorf("failed deleting addressId=%d with error=%w", addressID, err)
		errors.HandleError(err, span)
		return err
	}
	return nil
}

func (b *Backend) SetDefaultAddress(
	c context.Context,
	sess session.Session,
	addressID int64,
) error {
	c, span := otel.Tracer.Start(c, "Backend SetDefaultAddress")
	defer span.End()

	path := fmt.Sprintf("/api/shipping-addresses/%d/default", addressID)
	if err := b.do(c, http.MethodPost, path, &sess, nil, nil); err != nil {
		err = fmt.Errorf("failed setting default addressId=%d with error=%w", addressID, err)
		errors.HandleError(err, span)
		return err
	}
	return nil
}

func (b *Backend) FetchShippingFees(c context.Context) ([]response.ShippingFee, error) {
	c, span := otel.Tracer.Start(c, "Backend FetchShippingFees")
	defer span.End()

	var raw []byte
	if err := b.do(c, http.MethodGet, "/api/shipping-fees", nil, nil, &raw); err != nil {
		err = fmt.Errorf("failed fetching shipping fees with error=%w", err)
		errors.HandleError(err, span)
		return nil, err
	}
	return response.NormalizeFees(raw), nil
}

func (b *Backend) ValidateCoupon(
	c context.Context,
	sess session.Session,
	code string,
	cartTotal decimal.Decimal,
) (response.Coupon, error) {
	c, span := otel.Tracer.Start(c, "Backend ValidateCoupon")
	defer span.End()

	body := map[string]interface{}{"code": code, "cart_total": cartTotal}
	out := struct {
		Code           string          `json:"code"`
		Type           string          `json:"type"`
		Value          decimal.Decimal `json:"value"`
		DiscountAmount decimal.Decimal `json:"discount_amount"`
	}{}
	if err := b.do(c, http.MethodPost, "/api/coupons/validate", &sess, body, &out); err != nil {
		errors.HandleError(err, span)
		return response.Coupon{}, err
	}
	return response.Coupon{
		Code:           out.Code,
		Type:           out.Type,
		Value:          out.Value,
		DiscountAmount: out.DiscountAmount,
		CartTotal:      cartTotal,
	}, nil
}

type OrderItemPayload struct {
	ProductID   uuid.UUID  `json:"product_id"`
	VariationID *uuid.UUID `json:"variation_id,omitempty"`
	Quantity    int32      `json:"quantity"`
}

type OrderPayload struct {
	AddressID      *int64                `json:"address_id,omitempty"`
	GuestContact   *request.GuestContact `json:"guest_contact,omitempty"`
	GuestAddress   *request.GuestAddress `json:"guest_address,omitempty"`
	PaymentType    string                `json:"payment_type"`
	CouponCode     string                `json:"coupon_code,omitempty"`
	Items          []OrderItemPayload    `json:"items"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
}

func (b *Backend) CreateOrder(
	c context.Context,
	sess session.Session,
	payload OrderPayload,
) (response.BackendOrder, error) {
	c, span := otel.Tracer.Start(c, "Backend CreateOrder")
	defer span.End()

	path := "/api/orders"
	if !sess.Authenticated {
		path = "/api/orders/guest"
	}
	order := response.BackendOrder{}
	if err := b.do(c, http.MethodPost, path, &sess, payload, &order); err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		errors.HandleError(err, span)
		return response.BackendOrder{}, err
	}
	return order, nil
}
