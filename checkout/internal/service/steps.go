package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kirananta/storefront/checkout/internal/otel"
	"github.com/kirananta/storefront/checkout/pkg/response"
	inErrors "github.com/kirananta/storefront/internal/errors"
	"github.com/kirananta/storefront/internal/log"
	"github.com/kirananta/storefront/internal/session"
)

// CartReader is the slice of the cart store the step machine needs.
type CartReader interface {
	Snapshot(c context.Context, sess session.Session) (response.CartSnapshot, error)
}

// CheckoutService drives the two-step wizard. The current step lives in
// the session store so a reload, or a second tab, resumes where the
// shopper left off.
type CheckoutService struct {
	drafts *DraftStore
	carts  CartReader
}

func NewCheckoutService(drafts *DraftStore, carts CartReader) *CheckoutService {
	return &CheckoutService{drafts: drafts, carts: carts}
}

// CurrentStep resumes from the persisted step, forcing shipping back to
// cart when the cart has emptied out from under the parked session.
func (s *CheckoutService) CurrentStep(
	c context.Context,
	sess session.Session,
) (response.CheckoutStep, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService CurrentStep")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService CurrentStep").
		Logger()

	step, err := s.drafts.Step(c, sess.Key())
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.StepCart, err
	}

	if step == response.StepShipping {
		snapshot, err := s.carts.Snapshot(c, sess)
		if err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.StepCart, err
		}
		if snapshot.IsEmpty() {
			logger.Info().
				Str(log.KeyStep, string(step)).
				Msg("cart emptied while parked on shipping, reverting to cart")
			if err := s.drafts.SetStep(c, sess.Key(), response.StepCart); err != nil {
				inErrors.HandleError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return response.StepCart, err
			}
			return response.StepCart, nil
		}
	}

	return step, nil
}

// NextStep advances the wizard. cart to shipping requires a non-empty
// cart; at shipping it validates the draft is ready for submission
// without advancing anywhere.
func (s *CheckoutService) NextStep(
	c context.Context,
	sess session.Session,
) (response.CheckoutStep, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService NextStep")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService NextStep").
		Logger()

	step, err := s.CurrentStep(c, sess)
	if err != nil {
		return step, err
	}
	logger = logger.With().Str(log.KeyStep, string(step)).Logger()

	switch step {
	case response.StepCart:
		snapshot, err := s.carts.Snapshot(c, sess)
		if err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return step, err
		}
		if snapshot.IsEmpty() {
			inErrors.HandleError(inErrors.ErrEmptyCart, span)
			logger.Warn().Msg(inErrors.ErrEmptyCart.Error())
			return step, inErrors.ErrEmptyCart
		}
		if err := s.drafts.SetStep(c, sess.Key(), response.StepShipping); err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return step, err
		}
		logger.Info().Msg("advanced to shipping")
		return response.StepShipping, nil

	case response.StepShipping:
		draft, err := s.drafts.Draft(c, sess.Key())
		if err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return step, err
		}
		if !draft.HasShippingTarget() {
			inErrors.HandleError(inErrors.ErrNoShippingTarget, span)
			logger.Warn().Msg(inErrors.ErrNoShippingTarget.Error())
			return step, inErrors.ErrNoShippingTarget
		}
		if draft.Fee == nil {
			inErrors.HandleError(inErrors.ErrNoShippingFee, span)
			logger.Warn().Msg(inErrors.ErrNoShippingFee.Error())
			return step, inErrors.ErrNoShippingFee
		}
		return step, nil
	}

	return step, nil
}

func (s *CheckoutService) PrevStep(
	c context.Context,
	sess session.Session,
) (response.CheckoutStep, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService PrevStep")
	defer span.End()

	step, err := s.CurrentStep(c, sess)
	if err != nil {
		return step, err
	}
	if step == response.StepShipping {
		if err := s.drafts.SetStep(c, sess.Key(), response.StepCart); err != nil {
			inErrors.HandleError(err, span)
			return step, err
		}
		return response.StepCart, nil
	}
	return step, nil
}
