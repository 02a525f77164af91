package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kirananta/storefront/checkout/internal/cache"
	"github.com/kirananta/storefront/checkout/internal/otel"
	"github.com/kirananta/storefront/checkout/pkg/response"
	inErrors "github.com/kirananta/storefront/internal/errors"
)

const (
	sessionTTL    = 2 * time.Hour
	processingTTL = time.Minute
)

// DraftStore keeps the session-scoped checkout state: the current step,
// the order draft (selected address, fee, coupon, guest contact) and the
// in-flight submission flag. Keys expire with the checkout session.
type DraftStore struct {
	cache *redis.Client
}

func NewDraftStore(cache *redis.Client) *DraftStore {
	return &DraftStore{cache: cache}
}

func (s *DraftStore) Step(c context.Context, key uuid.UUID) (response.CheckoutStep, error) {
	c, span := otel.Tracer.Start(c, "DraftStore Step")
	defer span.End()

	value, err := s.cache.Get(c, fmt.Sprintf(cache.KeyStep, key.String())).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return response.StepCart, nil
		}
		err = fmt.Errorf("failed reading checkout step with error=%w", err)
		inErrors.HandleError(err, span)
		return response.StepCart, err
	}
	step := response.CheckoutStep(value)
	if !step.Valid() {
		return response.StepCart, nil
	}
	return step, nil
}

func (s *DraftStore) SetStep(c context.Context, key uuid.UUID, step response.CheckoutStep) error {
	c, span := otel.Tracer.Start(c, "DraftStore SetStep")
	defer span.End()

	err := s.cache.Set(c, fmt.Sprintf(cache.KeyStep, key.String()), string(step), sessionTTL).Err()
	if err != nil {
		err = fmt.Errorf("failed persisting checkout step with error=%w", err)
		inErrors.HandleError(err, span)
		return err
	}
	return nil
}

func (s *DraftStore) Draft(c context.Context, key uuid.UUID) (response.Draft, error) {
	c, span := otel.Tracer.Start(c, "DraftStore Draft")
	defer span.End()

	value, err := s.cache.Get(c, fmt.Sprintf(cache.KeyDraft, key.String())).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return response.Draft{}, nil
		}
		err = fmt.Errorf("failed reading draft with error=%w", err)
		inErrors.HandleError(err, span)
		return response.Draft{}, err
	}

	draft := response.Draft{}
	if err := json.Unmarshal([]byte(value), &draft); err != nil {
		err = fmt.Errorf("failed unmarshaling draft with error=%w", err)
		inErrors.HandleError(err, span)
		return response.Draft{}, err
	}
	return draft, nil
}

func (s *DraftStore) SaveDraft(c context.Context, key uuid.UUID, draft response.Draft) error {
	c, span := otel.Tracer.Start(c, "DraftStore SaveDraft")
	defer span.End()

	payload, err := json.Marshal(draft)
	if err != nil {
		err = fmt.Errorf("failed marshaling draft with error=%w", err)
		inErrors.HandleError(err, span)
		return err
	}
	err = s.cache.Set(c, fmt.Sprintf(cache.KeyDraft, key.String()), payload, sessionTTL).Err()
	if err != nil {
		err = fmt.Errorf("failed persisting draft with error=%w", err)
		inErrors.HandleError(err, span)
		return err
	}
	return nil
}

// ClearAll destroys the draft and the persisted step, used after a
// completed submission or an abandoned session.
func (s *DraftStore) ClearAll(c context.Context, key uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "DraftStore ClearAll")
	defer span.End()

	err := s.cache.Del(
		c,
		fmt.Sprintf(cache.KeyDraft, key.String()),
		fmt.Sprintf(cache.KeyStep, key.String()),
	).Err()
	if err != nil {
		err = fmt.Errorf("failed clearing checkout session with error=%w", err)
		inErrors.HandleError(err, span)
		return err
	}
	return nil
}

// BeginProcessing marks a submission in flight. It reports false when a
// previous submission has not finished.
func (s *DraftStore) BeginProcessing(c context.Context, key uuid.UUID) (bool, error) {
	c, span := otel.Tracer.Start(c, "DraftStore BeginProcessing")
	defer span.End()

	ok, err := s.cache.SetNX(c, fmt.Sprintf(cache.KeyProcessing, key.String()), "1", processingTTL).
		Result()
	if err != nil {
		err = fmt.Errorf("failed marking submission in flight with error=%w", err)
		inErrors.HandleError(err, span)
		return false, err
	}
	return ok, nil
}

func (s *DraftStore) EndProcessing(c context.Context, key uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "DraftStore EndProcessing")
	defer span.End()

	err := s.cache.Del(c, fmt.Sprintf(cache.KeyProcessing, key.String())).Err()
	if err != nil {
		err = fmt.Errorf("failed resetting submission flag with error=%w", err)
		inErrors.HandleError(err, span)
		return err
	}
	return nil
}
