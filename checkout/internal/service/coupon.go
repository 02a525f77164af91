package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kirananta/storefront/checkout/internal/otel"
	"github.com/kirananta/storefront/checkout/pkg/response"
	inErrors "github.com/kirananta/storefront/internal/errors"
	"github.com/kirananta/storefront/internal/log"
	"github.com/kirananta/storefront/internal/session"
)

// CouponValidator validates a code against the current cart total.
type CouponValidator interface {
	ValidateCoupon(
		c context.Context,
		sess session.Session,
		code string,
		cartTotal decimal.Decimal,
	) (response.Coupon, error)
}

// CouponService binds validated coupons to the draft. Coupons are an
// authenticated-only feature; guests are told to log in before any
// network call is made.
type CouponService struct {
	validator CouponValidator
	carts     CartReader
	drafts    *DraftStore
}

func NewCouponService(validator CouponValidator, carts CartReader, drafts *DraftStore) *CouponService {
	return &CouponService{validator: validator, carts: carts, drafts: drafts}
}

// Apply validates a coupon code and stores it on the draft together with
// the cart total it was validated against. A failed validation clears any
// previously applied coupon so the draft never keeps a stale discount.
func (s *CouponService) Apply(
	c context.Context,
	sess session.Session,
	code string,
) (response.Coupon, error) {
	c, span := otel.Tracer.Start(c, "CouponService Apply")
	defer span.End()

	code = strings.TrimSpace(code)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CouponService Apply").
		Str(log.KeyCouponCode, code).
		Logger()

	if code == "" {
		inErrors.HandleError(inErrors.ErrEmptyCouponCode, span)
		logger.Error().Err(inErrors.ErrEmptyCouponCode).Msg(inErrors.ErrEmptyCouponCode.Error())
		return response.Coupon{}, inErrors.ErrEmptyCouponCode
	}
	if !sess.Authenticated {
		inErrors.HandleError(inErrors.ErrLoginRequired, span)
		logger.Info().Msg("guest attempted to apply a coupon")
		return response.Coupon{}, inErrors.ErrLoginRequired
	}

	snapshot, err := s.carts.Snapshot(c, sess)
	if err != nil {
		err = fmt.Errorf("failed fetching cart snapshot with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Coupon{}, err
	}

	coupon, err := s.validator.ValidateCoupon(c, sess, code, snapshot.Total)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		if clearErr := s.clearCoupon(c, sess); clearErr != nil {
			logger.Error().Err(clearErr).Msg(clearErr.Error())
		}
		return response.Coupon{}, err
	}

	draft, err := s.drafts.Draft(c, sess.Key())
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Coupon{}, err
	}
	draft.Coupon = &coupon
	if err := s.drafts.SaveDraft(c, sess.Key(), draft); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Coupon{}, err
	}
	logger.Info().
		Str(log.KeyDiscount, coupon.DiscountAmount.String()).
		Msg("bound coupon to draft")

	return coupon, nil
}

// Remove drops the coupon from the draft. Removing when no coupon is
// applied is a no-op.
func (s *CouponService) Remove(c context.Context, sess session.Session) error {
	c, span := otel.Tracer.Start(c, "CouponService Remove")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CouponService Remove").
		Logger()

	if err := s.clearCoupon(c, sess); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

func (s *CouponService) clearCoupon(c context.Context, sess session.Session) error {
	draft, err := s.drafts.Draft(c, sess.Key())
	if err != nil {
		return err
	}
	if draft.Coupon == nil {
		return nil
	}
	draft.Coupon = nil
	return s.drafts.SaveDraft(c, sess.Key(), draft)
}
