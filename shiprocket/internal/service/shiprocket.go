package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kirananta/storefront/internal/config"
	inErrors "github.com/kirananta/storefront/internal/errors"
	inHttp "github.com/kirananta/storefront/internal/http"
	"github.com/kirananta/storefront/internal/log"
	"github.com/kirananta/storefront/shiprocket/internal/otel"
	"github.com/kirananta/storefront/shiprocket/pkg/request"
	"github.com/kirananta/storefront/shiprocket/pkg/response"
)

// ShiprocketService wraps the Shiprocket external API. The bearer token
// is fetched lazily on first use and cached for the process lifetime;
// a rejected stale token is surfaced to the caller, not re-authenticated
// transparently.
type ShiprocketService struct {
	httpClient *http.Client
	baseURL    string
	email      string
	password   string
	token      string
	mu         sync.Mutex
}

func NewShiprocketService(cfg config.Shiprocket) *ShiprocketService {
	return &ShiprocketService{
		baseURL:  cfg.BaseURL,
		email:    cfg.Email,
		password: cfg.Password,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
}

// authenticate logs in iff no token is cached yet. Callers hold no lock;
// the mutex serializes concurrent first use so only one login runs.
func (s *ShiprocketService) authenticate(c context.Context) (string, error) {
	c, span := otel.Tracer.Start(c, "ShiprocketService authenticate")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		return s.token, nil
	}

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShiprocketService authenticate").
		Logger()
	logger.Info().Msg("authenticating against shiprocket")

	payload, err := json.Marshal(map[string]string{
		"email":    s.email,
		"password": s.password,
	})
	if err != nil {
		return "", fmt.Errorf("failed marshaling auth payload with error=%w", err)
	}

	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		s.baseURL+"/v1/external/auth/login",
		bytes.NewReader(payload),
	)
	if err != nil {
		return "", fmt.Errorf("failed creating auth request with error=%w", err)
	}
	req.Header.Set(inHttp.HeaderContentType, inHttp.HeaderValueJson)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed calling shiprocket auth with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed reading auth response with error=%w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("shiprocket auth returned status code=%d", resp.StatusCode)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}

	auth := response.Auth{}
	if err := json.Unmarshal(body, &auth); err != nil {
		return "", fmt.Errorf("failed unmarshaling auth response with error=%w", err)
	}
	if auth.Token == "" {
		err = fmt.Errorf("shiprocket auth returned an empty token")
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	s.token = auth.Token
	logger.Info().Msg("authenticated against shiprocket")

	return s.token, nil
}

func (s *ShiprocketService) do(
	c context.Context,
	method string,
	path string,
	body interface{},
	out interface{},
) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShiprocketService do").
		Str(log.KeyRequestMethod, method).
		Str(log.KeyRequestURL, s.baseURL+path).
		Logger()

	token, err := s.authenticate(c)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed marshaling request body with error=%w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(c, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed creating request with error=%w", err)
	}
	req.Header.Set(inHttp.HeaderContentType, inHttp.HeaderValueJson)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed calling shiprocket with error=%w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed reading shiprocket response with error=%w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logger.Error().
			Int("statusCode", resp.StatusCode).
			Msgf("shiprocket returned status code=%d", resp.StatusCode)
		return fmt.Errorf("shiprocket returned status code=%d body=%s", resp.StatusCode, respBody)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed unmarshaling shiprocket response with error=%w", err)
	}
	return nil
}

func (s *ShiprocketService) CreateOrder(
	c context.Context,
	param request.CreateOrder,
) (response.CreatedOrder, error) {
	c, span := otel.Tracer.Start(c, "ShiprocketService CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShiprocketService CreateOrder").
		Str(log.KeyOrderID, param.OrderID).
		Logger()
	logger.Info().Msg("creating shiprocket order")

	order := response.CreatedOrder{}
	c = logger.WithContext(c)
	if err := s.do(c, http.MethodPost, "/v1/external/orders/create/adhoc", param, &order); err != nil {
		err = fmt.Errorf("failed creating shiprocket order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CreatedOrder{}, err
	}
	logger.Info().
		Int64(log.KeyShipmentID, order.ShipmentID).
		Msgf("created shiprocket order shipmentId=%d", order.ShipmentID)

	return order, nil
}

func (s *ShiprocketService) TrackShipment(
	c context.Context,
	shipmentID int64,
) (response.Tracking, error) {
	c, span := otel.Tracer.Start(c, "ShiprocketService TrackShipment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShiprocketService TrackShipment").
		Int64(log.KeyShipmentID, shipmentID).
		Logger()
	logger.Info().Msg("tracking shipment")

	tracking := response.Tracking{}
	path := fmt.Sprintf("/v1/external/courier/track/shipment/%d", shipmentID)
	c = logger.WithContext(c)
	if err := s.do(c, http.MethodGet, path, nil, &tracking); err != nil {
		err = fmt.Errorf("failed tracking shipmentId=%d with error=%w", shipmentID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Tracking{}, err
	}
	logger.Info().Msg("tracked shipment")

	return tracking, nil
}

func (s *ShiprocketService) GenerateLabel(
	c context.Context,
	param request.GenerateLabel,
) (response.Label, error) {
	c, span := otel.Tracer.Start(c, "ShiprocketService GenerateLabel")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShiprocketService GenerateLabel").
		Ints64(log.KeyShipmentID, param.ShipmentIDs).
		Logger()
	logger.Info().Msg("generating label")

	label := response.Label{}
	c = logger.WithContext(c)
	if err := s.do(c, http.MethodPost, "/v1/external/courier/generate/label", param, &label); err != nil {
		err = fmt.Errorf("failed generating label with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Label{}, err
	}
	logger.Info().Msg("generated label")

	return label, nil
}

func (s *ShiprocketService) RequestPickup(
	c context.Context,
	param request.RequestPickup,
) (response.Pickup, error) {
	c, span := otel.Tracer.Start(c, "ShiprocketService RequestPickup")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShiprocketService RequestPickup").
		Ints64(log.KeyShipmentID, param.ShipmentIDs).
		Logger()
	logger.Info().Msg("requesting pickup")

	pickup := response.Pickup{}
	c = logger.WithContext(c)
	if err := s.do(c, http.MethodPost, "/v1/external/courier/generate/pickup", param, &pickup); err != nil {
		err = fmt.Errorf("failed requesting pickup with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Pickup{}, err
	}
	logger.Info().Msg("requested pickup")

	return pickup, nil
}

func (s *ShiprocketService) CancelShipment(
	c context.Context,
	param request.CancelShipment,
) (response.Cancellation, error) {
	c, span := otel.Tracer.Start(c, "ShiprocketService CancelShipment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShiprocketService CancelShipment").
		Strs("awbs", param.AWBs).
		Logger()
	logger.Info().Msg("cancelling shipment")

	cancellation := response.Cancellation{}
	c = logger.WithContext(c)
	if err := s.do(c, http.MethodPost, "/v1/external/orders/cancel/shipment/awbs", param, &cancellation); err != nil {
		err = fmt.Errorf("failed cancelling shipment with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cancellation{}, err
	}
	logger.Info().Msg("cancelled shipment")

	return cancellation, nil
}
