package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/kirananta/storefront/checkout/internal/otel"
	"github.com/kirananta/storefront/checkout/internal/repository"
	"github.com/kirananta/storefront/checkout/pkg/request"
	"github.com/kirananta/storefront/checkout/pkg/response"
	inErrors "github.com/kirananta/storefront/internal/errors"
	"github.com/kirananta/storefront/internal/log"
	"github.com/kirananta/storefront/internal/session"
)

// CartBackend is the remote cart API used for authenticated sessions.
type CartBackend interface {
	FetchCart(c context.Context, sess session.Session) (response.CartSnapshot, error)
	AddCartItem(c context.Context, sess session.Session, param request.AddLine) error
	UpdateCartItem(c context.Context, sess session.Session, productID uuid.UUID, quantity int32) error
	RemoveCartItem(c context.Context, sess session.Session, productID uuid.UUID) error
	ClearCart(c context.Context, sess session.Session) error
}

// CartService holds the cart for both session kinds. Guest carts live in
// the local database; authenticated carts delegate to the remote backend,
// and every remote mutation is followed by a full refetch of the
// canonical cart. The refetch-after-mutation policy is deliberate: it
// serializes consistency through the backend instead of patching local
// state optimistically.
type CartService struct {
	queries *repository.Queries
	backend CartBackend
}

func NewCartService(queries *repository.Queries, backend CartBackend) *CartService {
	return &CartService{queries: queries, backend: backend}
}

func (s *CartService) Snapshot(
	c context.Context,
	sess session.Session,
) (response.CartSnapshot, error) {
	c, span := otel.Tracer.Start(c, "CartService Snapshot")
	defer span.End()

	if sess.Authenticated {
		return s.backend.FetchCart(c, sess)
	}

	lines, err := s.queries.FindLines(c, sess.SessionID)
	if err != nil {
		err = fmt.Errorf("failed finding guest cart lines with error=%w", err)
		inErrors.HandleError(err, span)
		return response.CartSnapshot{}, err
	}
	return repository.Snapshot(lines)
}

func (s *CartService) AddLine(
	c context.Context,
	sess session.Session,
	param request.AddLine,
) (response.CartSnapshot, error) {
	c, span := otel.Tracer.Start(c, "CartService AddLine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddLine").
		Str(log.KeyProductID, param.ProductID.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	if sess.Authenticated {
		logger = logger.With().Str(log.KeyProcess, "adding cart item to backend").Logger()
		logger.Info().Msg("adding cart item to backend")
		if err := s.backend.AddCartItem(c, sess, param); err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.CartSnapshot{}, err
		}
		logger.Info().Msg("added cart item to backend")
		return s.backend.FetchCart(c, sess)
	}

	logger = logger.With().Str(log.KeyProcess, "merging guest cart line").Logger()
	logger.Info().Msg("merging guest cart line")
	cartID, err := s.queries.EnsureCart(c, sess.SessionID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSnapshot{}, err
	}

	existing, err := s.queries.FindLineByKey(
		c,
		sess.SessionID,
		param.ProductID,
		param.VariationID,
		param.Attributes,
	)
	switch {
	case err == nil:
		err = s.queries.UpdateLineQuantity(c, sess.SessionID, existing.ID, existing.Quantity+param.Quantity)
		if err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.CartSnapshot{}, err
		}
		logger.Info().
			Str(log.KeyCartLineID, existing.ID.String()).
			Int32("mergedQuantity", existing.Quantity+param.Quantity).
			Msg("merged guest cart line")
	case errors.Is(err, pgx.ErrNoRows):
		err = s.queries.InsertLine(c, repository.InsertLineParams{
			ID:          uuid.New(),
			CartID:      cartID,
			ProductID:   param.ProductID,
			VariationID: param.VariationID,
			Name:        param.Name,
			UnitPrice:   param.UnitPrice,
			Quantity:    param.Quantity,
			Attributes:  param.Attributes,
		})
		if err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.CartSnapshot{}, err
		}
		logger.Info().Msg("appended guest cart line")
	default:
		err = fmt.Errorf("failed finding guest cart line with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSnapshot{}, err
	}

	return s.Snapshot(c, sess)
}

func (s *CartService) RemoveLine(
	c context.Context,
	sess session.Session,
	lineID uuid.UUID,
) (response.CartSnapshot, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveLine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveLine").
		Str(log.KeyCartLineID, lineID.String()).
		Logger()

	if sess.Authenticated {
		snapshot, err := s.backend.FetchCart(c, sess)
		if err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.CartSnapshot{}, err
		}
		line, ok := findLine(snapshot, lineID)
		if !ok {
			inErrors.HandleError(inErrors.ErrLineNotFound, span)
			logger.Error().Err(inErrors.ErrLineNotFound).Msg(inErrors.ErrLineNotFound.Error())
			return response.CartSnapshot{}, inErrors.ErrLineNotFound
		}
		if err := s.backend.RemoveCartItem(c, sess, line.ProductID); err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.CartSnapshot{}, err
		}
		logger.Info().Msg("removed cart line from backend")
		return s.backend.FetchCart(c, sess)
	}

	affected, err := s.queries.DeleteLine(c, sess.SessionID, lineID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSnapshot{}, err
	}
	if affected == 0 {
		inErrors.HandleError(inErrors.ErrLineNotFound, span)
		logger.Error().Err(inErrors.ErrLineNotFound).Msg(inErrors.ErrLineNotFound.Error())
		return response.CartSnapshot{}, inErrors.ErrLineNotFound
	}
	logger.Info().Msg("removed guest cart line")

	return s.Snapshot(c, sess)
}

// SetQuantity updates a line's quantity directly; anything below one is a
// removal, never a zero-quantity line.
func (s *CartService) SetQuantity(
	c context.Context,
	sess session.Session,
	lineID uuid.UUID,
	quantity int32,
) (response.CartSnapshot, error) {
	c, span := otel.Tracer.Start(c, "CartService SetQuantity")
	defer span.End()

	if quantity < 1 {
		return s.RemoveLine(c, sess, lineID)
	}

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService SetQuantity").
		Str(log.KeyCartLineID, lineID.String()).
		Int32(log.KeyQuantity, quantity).
		Logger()

	if sess.Authenticated {
		snapshot, err := s.backend.FetchCart(c, sess)
		if err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.CartSnapshot{}, err
		}
		line, ok := findLine(snapshot, lineID)
		if !ok {
			inErrors.HandleError(inErrors.ErrLineNotFound, span)
			logger.Error().Err(inErrors.ErrLineNotFound).Msg(inErrors.ErrLineNotFound.Error())
			return response.CartSnapshot{}, inErrors.ErrLineNotFound
		}
		if err := s.backend.UpdateCartItem(c, sess, line.ProductID, quantity); err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.CartSnapshot{}, err
		}
		logger.Info().Msg("updated cart line quantity on backend")
		return s.backend.FetchCart(c, sess)
	}

	if _, err := s.queries.FindLineByID(c, sess.SessionID, lineID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = inErrors.ErrLineNotFound
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSnapshot{}, err
	}
	if err := s.queries.UpdateLineQuantity(c, sess.SessionID, lineID, quantity); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSnapshot{}, err
	}
	logger.Info().Msg("updated guest cart line quantity")

	return s.Snapshot(c, sess)
}

// ChangeQuantity applies a delta, clamped to a minimum of one. Deltas
// never remove a line.
func (s *CartService) ChangeQuantity(
	c context.Context,
	sess session.Session,
	lineID uuid.UUID,
	delta int32,
) (response.CartSnapshot, error) {
	c, span := otel.Tracer.Start(c, "CartService ChangeQuantity")
	defer span.End()

	var current int32
	if sess.Authenticated {
		snapshot, err := s.backend.FetchCart(c, sess)
		if err != nil {
			inErrors.HandleError(err, span)
			return response.CartSnapshot{}, err
		}
		line, ok := findLine(snapshot, lineID)
		if !ok {
			inErrors.HandleError(inErrors.ErrLineNotFound, span)
			return response.CartSnapshot{}, inErrors.ErrLineNotFound
		}
		current = line.Quantity
	} else {
		line, err := s.queries.FindLineByID(c, sess.SessionID, lineID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				err = inErrors.ErrLineNotFound
			}
			inErrors.HandleError(err, span)
			return response.CartSnapshot{}, err
		}
		current = line.Quantity
	}

	quantity := current + delta
	if quantity < 1 {
		quantity = 1
	}
	return s.SetQuantity(c, sess, lineID, quantity)
}

func (s *CartService) Clear(c context.Context, sess session.Session) error {
	c, span := otel.Tracer.Start(c, "CartService Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Clear").
		Logger()

	if sess.Authenticated {
		if err := s.backend.ClearCart(c, sess); err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		logger.Info().Msg("cleared cart on backend")
		return nil
	}

	if err := s.queries.DeleteAllLines(c, sess.SessionID); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("cleared guest cart")
	return nil
}

func findLine(snapshot response.CartSnapshot, lineID uuid.UUID) (response.CartLine, bool) {
	for _, line := range snapshot.Lines {
		if line.ID == lineID {
			return line, true
		}
	}
	return response.CartLine{}, false
}
