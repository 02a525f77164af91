package service

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kirananta/storefront/checkout/internal/client"
	"github.com/kirananta/storefront/checkout/internal/otel"
	"github.com/kirananta/storefront/checkout/pkg/request"
	"github.com/kirananta/storefront/checkout/pkg/response"
	inErrors "github.com/kirananta/storefront/internal/errors"
	"github.com/kirananta/storefront/internal/log"
	"github.com/kirananta/storefront/internal/session"
)

var orderPlacedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "storefront",
	Subsystem: "checkout",
	Name:      "orders_placed_total",
	Help:      "Orders accepted by the backend, labelled by payment type.",
}, []string{"payment_type"})

// OrderCarts is the slice of the cart service the order flow needs.
type OrderCarts interface {
	Snapshot(c context.Context, sess session.Session) (response.CartSnapshot, error)
	Clear(c context.Context, sess session.Session) error
}

// OrderBackend creates the order on the storefront backend.
type OrderBackend interface {
	CreateOrder(
		c context.Context,
		sess session.Session,
		payload client.OrderPayload,
	) (response.BackendOrder, error)
}

// PaymentGateway registers an accepted order with the payment provider.
type PaymentGateway interface {
	CreateGatewayOrder(
		c context.Context,
		amount decimal.Decimal,
		receipt string,
	) (response.GatewayOrder, error)
}

// OrderService turns a complete draft into a backend order and, for
// prepaid orders, a payment gateway handoff.
type OrderService struct {
	carts   OrderCarts
	backend OrderBackend
	gateway PaymentGateway
	drafts  *DraftStore
}

func NewOrderService(
	carts OrderCarts,
	backend OrderBackend,
	gateway PaymentGateway,
	drafts *DraftStore,
) *OrderService {
	return &OrderService{carts: carts, backend: backend, gateway: gateway, drafts: drafts}
}

// PlaceOrder submits the draft. At most one submission per session runs at
// a time; a second concurrent attempt fails with ErrOrderInFlight. Cash on
// delivery completes the checkout here. Prepaid orders hand off to the
// gateway and the cart survives until payment is confirmed, so an
// abandoned payment can be retried.
func (s *OrderService) PlaceOrder(
	c context.Context,
	sess session.Session,
	param request.PlaceOrder,
) (response.PlacedOrder, error) {
	c, span := otel.Tracer.Start(c, "OrderService PlaceOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService PlaceOrder").
		Str(log.KeyPaymentMethod, param.PaymentMethod).
		Logger()

	acquired, err := s.drafts.BeginProcessing(c, sess.Key())
	if err != nil {
		err = fmt.Errorf("failed acquiring processing flag with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PlacedOrder{}, err
	}
	if !acquired {
		inErrors.HandleError(inErrors.ErrOrderInFlight, span)
		logger.Info().Msg("rejected concurrent submission for session")
		return response.PlacedOrder{}, inErrors.ErrOrderInFlight
	}
	defer func() {
		if err := s.drafts.EndProcessing(c, sess.Key()); err != nil {
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	snapshot, err := s.carts.Snapshot(c, sess)
	if err != nil {
		err = fmt.Errorf("failed fetching cart snapshot with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PlacedOrder{}, err
	}
	if snapshot.IsEmpty() {
		inErrors.HandleError(inErrors.ErrEmptyCart, span)
		logger.Info().Msg("submission with an empty cart")
		return response.PlacedOrder{}, inErrors.ErrEmptyCart
	}

	draft, err := s.drafts.Draft(c, sess.Key())
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PlacedOrder{}, err
	}

	// Guest shipping details may arrive with the submission itself.
	if !sess.Authenticated {
		if param.GuestContact != nil {
			draft.GuestContact = &response.GuestContact{
				Email:     param.GuestContact.Email,
				FirstName: param.GuestContact.FirstName,
				LastName:  param.GuestContact.LastName,
			}
		}
		if param.GuestAddress != nil {
			draft.GuestAddress = &response.GuestAddress{
				AddressText: param.GuestAddress.AddressText,
				City:        param.GuestAddress.City,
				State:       param.GuestAddress.State,
				PostalCode:  param.GuestAddress.PostalCode,
				Country:     param.GuestAddress.Country,
				Phone:       param.GuestAddress.Phone,
			}
		}
		if draft.GuestContact == nil || draft.GuestAddress == nil {
			inErrors.HandleError(inErrors.ErrGuestContactRequired, span)
			logger.Info().Msg("guest submission without contact or address")
			return response.PlacedOrder{}, inErrors.ErrGuestContactRequired
		}
	}
	if !draft.HasShippingTarget() {
		inErrors.HandleError(inErrors.ErrNoShippingTarget, span)
		logger.Info().Msg("submission without a shipping target")
		return response.PlacedOrder{}, inErrors.ErrNoShippingTarget
	}
	if draft.Fee == nil {
		inErrors.HandleError(inErrors.ErrNoShippingFee, span)
		logger.Info().Msg("submission without a shipping fee")
		return response.PlacedOrder{}, inErrors.ErrNoShippingFee
	}

	// A coupon validated against a different cart total is stale; drop it
	// rather than submit a discount the backend would refuse.
	if draft.Coupon != nil && !draft.Coupon.CartTotal.Equal(snapshot.Total) {
		logger.Info().
			Str(log.KeyCouponCode, draft.Coupon.Code).
			Str(log.KeyTotal, snapshot.Total.String()).
			Msg("dropping coupon validated against a different cart total")
		draft.Coupon = nil
		if err := s.drafts.SaveDraft(c, sess.Key(), draft); err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.PlacedOrder{}, err
		}
	}

	paymentType, err := resolvePaymentType(draft.Fee, param.PaymentMethod)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Info().Msg(err.Error())
		return response.PlacedOrder{}, err
	}

	payload := client.OrderPayload{
		GuestContact: param.GuestContact,
		GuestAddress: param.GuestAddress,
		PaymentType:  paymentType,
		Items:        make([]client.OrderItemPayload, 0, len(snapshot.Lines)),
	}
	if draft.Address != nil {
		payload.AddressID = &draft.Address.ID
	}
	if draft.Coupon != nil {
		payload.CouponCode = draft.Coupon.Code
		payload.DiscountAmount = draft.Coupon.DiscountAmount
	}
	for _, line := range snapshot.Lines {
		payload.Items = append(payload.Items, client.OrderItemPayload{
			ProductID:   line.ProductID,
			VariationID: line.VariationID,
			Quantity:    line.Quantity,
		})
	}

	order, err := s.backend.CreateOrder(c, sess, payload)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PlacedOrder{}, err
	}
	logger = logger.With().
		Str(log.KeyOrderID, order.ID.String()).
		Str(log.KeyTotal, order.Amount.String()).
		Logger()
	orderPlacedCounter.WithLabelValues(paymentType).Inc()

	placed := response.PlacedOrder{
		Status:      order.Status,
		PaymentType: paymentType,
		OrderID:     order.ID,
		Amount:      order.Amount,
	}

	if paymentType == response.PaymentTypeCod {
		if err := s.carts.Clear(c, sess); err != nil {
			logger.Error().Err(err).Msg(err.Error())
		}
		if err := s.drafts.ClearAll(c, sess.Key()); err != nil {
			logger.Error().Err(err).Msg(err.Error())
		}
		placed.Completed = true
		logger.Info().Msg("placed cash on delivery order")
		return placed, nil
	}

	// The backend order already exists; a gateway failure here is
	// surfaced without rolling it back so payment can be retried.
	gateway, err := s.gateway.CreateGatewayOrder(c, order.Amount, order.ID.String())
	if err != nil {
		err = fmt.Errorf("failed creating gateway order for orderId=%s with error=%w", order.ID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PlacedOrder{}, err
	}
	placed.Gateway = &gateway
	logger.Info().Msg("placed prepaid order and created gateway order")

	return placed, nil
}

// resolvePaymentType derives the backend payment type. A cod fee tier
// forces cash on delivery regardless of the requested method; any other
// tier needs an explicit prepaid method, which is passed through so the
// backend records what the shopper chose.
func resolvePaymentType(fee *response.ShippingFee, method string) (string, error) {
	if fee.OrderType == response.OrderTypeCod || method == response.PaymentTypeCod {
		return response.PaymentTypeCod, nil
	}
	if method == "" {
		return "", inErrors.ErrPaymentMethodRequired
	}
	return method, nil
}
