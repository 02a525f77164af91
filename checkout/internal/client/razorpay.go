package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kirananta/storefront/checkout/internal/otel"
	"github.com/kirananta/storefront/checkout/pkg/response"
	"github.com/kirananta/storefront/internal/config"
	"github.com/kirananta/storefront/internal/errors"
	inHttp "github.com/kirananta/storefront/internal/http"
	"github.com/kirananta/storefront/internal/log"
)

const razorpayCurrency = "INR"

// Razorpay creates gateway orders the payment widget is opened with. The
// internal order stays pending until the gateway redirects back to the
// callback URL; nothing here settles a payment.
type Razorpay struct {
	httpClient  *http.Client
	baseURL     string
	keyID       string
	keySecret   string
	callbackURL string
}

func NewRazorpay(cfg config.Razorpay) *Razorpay {
	return &Razorpay{
		baseURL:     cfg.BaseURL,
		keyID:       cfg.KeyID,
		keySecret:   cfg.KeySecret,
		callbackURL: cfg.CallbackURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
}

// CreateGatewayOrder registers the internal order with Razorpay. Amount is
// converted to paise; the receipt references the internal order id so the
// backend can reconcile the gateway callback.
func (r *Razorpay) CreateGatewayOrder(
	c context.Context,
	amount decimal.Decimal,
	receipt string,
) (response.GatewayOrder, error) {
	c, span := otel.Tracer.Start(c, "Razorpay CreateGatewayOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Razorpay CreateGatewayOrder").
		Str(log.KeyOrderID, receipt).
		Logger()

	paise := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	body := map[string]interface{}{
		"amount":   paise,
		"currency": razorpayCurrency,
		"receipt":  receipt,
		"notes": map[string]string{
			"callback_url": r.callbackURL,
		},
	}

	logger = logger.With().Str(log.KeyProcess, "creating gateway order").Logger()
	logger.Info().Msgf("creating gateway order for receipt=%s amount=%d paise", receipt, paise)
	payload, err := json.Marshal(body)
	if err != nil {
		err = fmt.Errorf("failed marshaling gateway order with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.GatewayOrder{}, err
	}

	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		r.baseURL+"/v1/orders",
		bytes.NewReader(payload),
	)
	if err != nil {
		err = fmt.Errorf("failed creating gateway order request with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.GatewayOrder{}, err
	}
	req.Header.Set(inHttp.HeaderContentType, inHttp.HeaderValueJson)
	req.SetBasicAuth(r.keyID, r.keySecret)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed calling payment gateway with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.GatewayOrder{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody := map[string]interface{}{}
		json.NewDecoder(resp.Body).Decode(&respBody)
		err = fmt.Errorf(
			"payment gateway returned status code=%d with body=%v",
			resp.StatusCode,
			respBody,
		)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.GatewayOrder{}, err
	}

	gatewayOrder := struct {
		ID       string `json:"id"`
		Currency string `json:"currency"`
		Amount   int64  `json:"amount"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&gatewayOrder); err != nil {
		err = fmt.Errorf("failed unmarshaling gateway order with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.GatewayOrder{}, err
	}
	logger.Info().Msgf("created gateway order id=%s", gatewayOrder.ID)

	return response.GatewayOrder{
		ID:       gatewayOrder.ID,
		Currency: gatewayOrder.Currency,
		Amount:   gatewayOrder.Amount,
		KeyID:    r.keyID,
	}, nil
}
