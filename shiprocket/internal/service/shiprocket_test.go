package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirananta/storefront/internal/config"
	"github.com/kirananta/storefront/shiprocket/pkg/request"
)

type shiprocketStub struct {
	mu         sync.Mutex
	authCalls  int
	seenTokens []string
}

func (s *shiprocketStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/external/auth/login", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.authCalls++
		s.mu.Unlock()
		_, _ = w.Write([]byte(`{"token":"shiprocket-token"}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.seenTokens = append(s.seenTokens, r.Header.Get("Authorization"))
		s.mu.Unlock()
		_, _ = w.Write([]byte(`{"order_id":11,"shipment_id":42,"status":"NEW"}`))
	})
	return mux
}

func newTestShiprocket(t *testing.T) (*ShiprocketService, *shiprocketStub) {
	t.Helper()
	stub := &shiprocketStub{}
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)
	svc := NewShiprocketService(config.Shiprocket{
		BaseURL:  server.URL,
		Email:    "ops@example.com",
		Password: "secret",
	})
	return svc, stub
}

func TestShiprocketAuthenticatesOnceAcrossOperations(t *testing.T) {
	c := context.Background()
	svc, stub := newTestShiprocket(t)

	order, err := svc.CreateOrder(c, request.CreateOrder{OrderID: "ord-1"})
	require.NoError(t, err)
	assert.EqualValues(t, 42, order.ShipmentID)

	_, err = svc.TrackShipment(c, order.ShipmentID)
	require.NoError(t, err)

	_, err = svc.GenerateLabel(c, request.GenerateLabel{ShipmentIDs: []int64{order.ShipmentID}})
	require.NoError(t, err)

	assert.Equal(t, 1, stub.authCalls)
	for _, token := range stub.seenTokens {
		assert.Equal(t, "Bearer shiprocket-token", token)
	}
}

func TestShiprocketConcurrentFirstUseLogsInOnce(t *testing.T) {
	c := context.Background()
	svc, stub := newTestShiprocket(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.TrackShipment(c, 42)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, stub.authCalls)
}

func TestShiprocketSurfacesUpstreamFailure(t *testing.T) {
	c := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/external/auth/login" {
			_, _ = w.Write([]byte(`{"token":"shiprocket-token"}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid pickup location"}`))
	}))
	t.Cleanup(server.Close)

	svc := NewShiprocketService(config.Shiprocket{
		BaseURL:  server.URL,
		Email:    "ops@example.com",
		Password: "secret",
	})

	_, err := svc.RequestPickup(c, request.RequestPickup{ShipmentIDs: []int64{42}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code=400")
}

func TestShiprocketAuthFailureIsSurfaced(t *testing.T) {
	c := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	svc := NewShiprocketService(config.Shiprocket{
		BaseURL:  server.URL,
		Email:    "ops@example.com",
		Password: "wrong",
	})

	_, err := svc.CancelShipment(c, request.CancelShipment{AWBs: []string{"AWB123"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth")
}
