package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kirananta/storefront/checkout/internal/otel"
	"github.com/kirananta/storefront/checkout/pkg/request"
	"github.com/kirananta/storefront/checkout/pkg/response"
	inErrors "github.com/kirananta/storefront/internal/errors"
	"github.com/kirananta/storefront/internal/log"
	"github.com/kirananta/storefront/internal/session"
)

// ShippingBackend covers the address book and fee tier endpoints.
type ShippingBackend interface {
	ListAddresses(c context.Context, sess session.Session) ([]response.ShippingAddress, error)
	CreateAddress(c context.Context, sess session.Session, param request.Address) error
	UpdateAddress(c context.Context, sess session.Session, addressID int64, param request.Address) error
	DeleteAddress(c context.Context, sess session.Session, addressID int64) error
	SetDefaultAddress(c context.Context, sess session.Session, addressID int64) error
	FetchShippingFees(c context.Context) ([]response.ShippingFee, error)
}

// ShippingService resolves the shipping leg of the draft. Address
// mutations always refetch the full list afterwards instead of patching
// a local copy.
type ShippingService struct {
	backend ShippingBackend
	drafts  *DraftStore
}

func NewShippingService(backend ShippingBackend, drafts *DraftStore) *ShippingService {
	return &ShippingService{backend: backend, drafts: drafts}
}

// Options fetches the saved addresses and the fee tiers concurrently and
// auto-selects defaults into the draft where nothing is bound yet. Guests
// have no address book; they only get fee tiers.
func (s *ShippingService) Options(
	c context.Context,
	sess session.Session,
) (response.ShippingOptions, error) {
	c, span := otel.Tracer.Start(c, "ShippingService Options")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShippingService Options").
		Logger()

	var (
		wg        sync.WaitGroup
		addresses []response.ShippingAddress
		fees      []response.ShippingFee
		addrErr   error
		feeErr    error
	)
	if sess.Authenticated {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addresses, addrErr = s.backend.ListAddresses(c, sess)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		fees, feeErr = s.backend.FetchShippingFees(c)
	}()
	wg.Wait()

	if addrErr != nil {
		addrErr = fmt.Errorf("failed fetching addresses with error=%w", addrErr)
		inErrors.HandleError(addrErr, span)
		logger.Error().Err(addrErr).Msg(addrErr.Error())
		return response.ShippingOptions{}, addrErr
	}
	if feeErr != nil {
		feeErr = fmt.Errorf("failed fetching shipping fees with error=%w", feeErr)
		inErrors.HandleError(feeErr, span)
		logger.Error().Err(feeErr).Msg(feeErr.Error())
		return response.ShippingOptions{}, feeErr
	}
	if addresses == nil {
		addresses = []response.ShippingAddress{}
	}

	draft, err := s.drafts.Draft(c, sess.Key())
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ShippingOptions{}, err
	}

	changed := false
	if draft.Address == nil {
		for i, address := range addresses {
			if address.IsDefault {
				draft.Address = &addresses[i]
				changed = true
				break
			}
		}
	}
	if draft.Fee == nil {
		if fee, ok := response.DefaultFee(fees); ok {
			draft.Fee = &fee
			changed = true
		}
	}
	if changed {
		if err := s.drafts.SaveDraft(c, sess.Key(), draft); err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.ShippingOptions{}, err
		}
	}

	return response.ShippingOptions{
		Addresses:       addresses,
		Fees:            fees,
		SelectedAddress: draft.Address,
		SelectedFee:     draft.Fee,
		NeedsAddress:    sess.Authenticated && len(addresses) == 0,
	}, nil
}

func (s *ShippingService) CreateAddress(
	c context.Context,
	sess session.Session,
	param request.Address,
) ([]response.ShippingAddress, error) {
	c, span := otel.Tracer.Start(c, "ShippingService CreateAddress")
	defer span.End()

	if err := s.backend.CreateAddress(c, sess, param); err != nil {
		inErrors.HandleError(err, span)
		return nil, err
	}
	return s.backend.ListAddresses(c, sess)
}

func (s *ShippingService) UpdateAddress(
	c context.Context,
	sess session.Session,
	addressID int64,
	param request.Address,
) ([]response.ShippingAddress, error) {
	c, span := otel.Tracer.Start(c, "ShippingService UpdateAddress")
	defer span.End()

	if err := s.backend.UpdateAddress(c, sess, addressID, param); err != nil {
		inErrors.HandleError(err, span)
		return nil, err
	}
	return s.backend.ListAddresses(c, sess)
}

func (s *ShippingService) DeleteAddress(
	c context.Context,
	sess session.Session,
	addressID int64,
) ([]response.ShippingAddress, error) {
	c, span := otel.Tracer.Start(c, "ShippingService DeleteAddress")
	defer span.End()

	if err := s.backend.DeleteAddress(c, sess, addressID); err != nil {
		inErrors.HandleError(err, span)
		return nil, err
	}

	addresses, err := s.backend.ListAddresses(c, sess)
	if err != nil {
		inErrors.HandleError(err, span)
		return nil, err
	}

	// A deleted address must not linger on the draft.
	draft, err := s.drafts.Draft(c, sess.Key())
	if err != nil {
		inErrors.HandleError(err, span)
		return nil, err
	}
	if draft.Address != nil && draft.Address.ID == addressID {
		draft.Address = nil
		if err := s.drafts.SaveDraft(c, sess.Key(), draft); err != nil {
			inErrors.HandleError(err, span)
			return nil, err
		}
	}
	return addresses, nil
}

func (s *ShippingService) SetDefaultAddress(
	c context.Context,
	sess session.Session,
	addressID int64,
) ([]response.ShippingAddress, error) {
	c, span := otel.Tracer.Start(c, "ShippingService SetDefaultAddress")
	defer span.End()

	if err := s.backend.SetDefaultAddress(c, sess, addressID); err != nil {
		inErrors.HandleError(err, span)
		return nil, err
	}
	return s.backend.ListAddresses(c, sess)
}

// Select binds an address and a fee tier to the draft. Exactly one fee is
// selected per checkout session. Guests have no address book; they bind
// their contact and shipping address here instead.
func (s *ShippingService) Select(
	c context.Context,
	sess session.Session,
	param request.SelectShipping,
) (response.Draft, error) {
	c, span := otel.Tracer.Start(c, "ShippingService Select")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShippingService Select").
		Int64(log.KeyFeeID, param.FeeID).
		Logger()

	draft, err := s.drafts.Draft(c, sess.Key())
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Draft{}, err
	}

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
	}

	if param.AddressID != nil {
		addresses, err := s.backend.ListAddresses(c, sess)
		if err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Draft{}, err
		}
		found := false
		for i, address := range addresses {
			if address.ID == *param.AddressID {
				draft.Address = &addresses[i]
				found = true
				break
			}
		}
		if !found {
			err = fmt.Errorf("addressId=%d not found", *param.AddressID)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Draft{}, err
		}
	}

	fees, err := s.backend.FetchShippingFees(c)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Draft{}, err
	}
	found := false
	for i, fee := range fees {
		if fee.ID == param.FeeID {
			draft.Fee = &fees[i]
			found = true
			break
		}
	}
	if !found {
		err = fmt.Errorf("shippingFeeId=%d not found", param.FeeID)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Draft{}, err
	}

	if err := s.drafts.SaveDraft(c, sess.Key(), draft); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Draft{}, err
	}
	logger.Info().Msg("bound shipping selection to draft")

	return draft, nil
}
