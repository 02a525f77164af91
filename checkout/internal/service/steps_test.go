package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirananta/storefront/checkout/pkg/response"
	inErrors "github.com/kirananta/storefront/internal/errors"
	"github.com/kirananta/storefront/internal/session"
)

type fakeCartReader struct {
	snapshot response.CartSnapshot
	err      error
}

func (f *fakeCartReader) Snapshot(
	c context.Context,
	sess session.Session,
) (response.CartSnapshot, error) {
	return f.snapshot, f.err
}

func filledSnapshot() response.CartSnapshot {
	return response.NewCartSnapshot([]response.CartLine{
		{
			ID:        uuid.New(),
			ProductID: uuid.New(),
			Name:      "linen shirt",
			UnitPrice: decimal.NewFromInt(500),
			Quantity:  1,
		},
	})
}

func TestNextStepBlockedOnEmptyCart(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	carts := &fakeCartReader{snapshot: response.NewCartSnapshot(nil)}
	checkoutService := NewCheckoutService(drafts, carts)
	sess := guestSession()

	_, err := checkoutService.NextStep(c, sess)
	assert.ErrorIs(t, err, inErrors.ErrEmptyCart)

	step, err := checkoutService.CurrentStep(c, sess)
	require.NoError(t, err)
	assert.Equal(t, response.StepCart, step)
}

func TestNextStepAdvancesWithFilledCart(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	carts := &fakeCartReader{snapshot: filledSnapshot()}
	checkoutService := NewCheckoutService(drafts, carts)
	sess := guestSession()

	step, err := checkoutService.NextStep(c, sess)
	require.NoError(t, err)
	assert.Equal(t, response.StepShipping, step)

	step, err = checkoutService.CurrentStep(c, sess)
	require.NoError(t, err)
	assert.Equal(t, response.StepShipping, step)
}

func TestCurrentStepRevertsWhenCartEmptied(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	carts := &fakeCartReader{snapshot: filledSnapshot()}
	checkoutService := NewCheckoutService(drafts, carts)
	sess := guestSession()

	step, err := checkoutService.NextStep(c, sess)
	require.NoError(t, err)
	require.Equal(t, response.StepShipping, step)

	// Emptying the cart behind the wizard's back must not leave the
	// resumed session stranded on the shipping step.
	carts.snapshot = response.NewCartSnapshot(nil)
	step, err = checkoutService.CurrentStep(c, sess)
	require.NoError(t, err)
	assert.Equal(t, response.StepCart, step)
}

func TestNextStepFromShippingRequiresTargetAndFee(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	carts := &fakeCartReader{snapshot: filledSnapshot()}
	checkoutService := NewCheckoutService(drafts, carts)
	sess := guestSession()

	_, err := checkoutService.NextStep(c, sess)
	require.NoError(t, err)

	_, err = checkoutService.NextStep(c, sess)
	assert.ErrorIs(t, err, inErrors.ErrNoShippingTarget)

	draft, err := drafts.Draft(c, sess.Key())
	require.NoError(t, err)
	draft.Address = &response.ShippingAddress{ID: 1, AddressText: "12 MG Road", City: "Bengaluru"}
	require.NoError(t, drafts.SaveDraft(c, sess.Key(), draft))

	_, err = checkoutService.NextStep(c, sess)
	assert.ErrorIs(t, err, inErrors.ErrNoShippingFee)

	draft.Fee = &response.ShippingFee{ID: 1, OrderType: response.OrderTypePrepaid, Fee: decimal.NewFromInt(50)}
	require.NoError(t, drafts.SaveDraft(c, sess.Key(), draft))

	step, err := checkoutService.NextStep(c, sess)
	require.NoError(t, err)
	assert.Equal(t, response.StepShipping, step)
}

func TestPrevStepReturnsToCart(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	carts := &fakeCartReader{snapshot: filledSnapshot()}
	checkoutService := NewCheckoutService(drafts, carts)
	sess := guestSession()

	_, err := checkoutService.NextStep(c, sess)
	require.NoError(t, err)

	step, err := checkoutService.PrevStep(c, sess)
	require.NoError(t, err)
	assert.Equal(t, response.StepCart, step)

	step, err = checkoutService.PrevStep(c, sess)
	require.NoError(t, err)
	assert.Equal(t, response.StepCart, step)
}
