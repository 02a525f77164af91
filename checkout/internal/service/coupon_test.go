package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirananta/storefront/checkout/internal/client"
	"github.com/kirananta/storefront/checkout/pkg/response"
	inErrors "github.com/kirananta/storefront/internal/errors"
	"github.com/kirananta/storefront/internal/session"
)

type fakeCouponValidator struct {
	coupon response.Coupon
	err    error
	calls  int
}

func (f *fakeCouponValidator) ValidateCoupon(
	c context.Context,
	sess session.Session,
	code string,
	cartTotal decimal.Decimal,
) (response.Coupon, error) {
	f.calls++
	if f.err != nil {
		return response.Coupon{}, f.err
	}
	coupon := f.coupon
	coupon.CartTotal = cartTotal
	return coupon, nil
}

func authenticatedSession() session.Session {
	return session.Session{UserID: uuid.New(), Authenticated: true}
}

func TestApplyCouponBindsDiscountToDraft(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	validator := &fakeCouponValidator{coupon: response.Coupon{
		Code:           "SAVE10",
		Type:           response.CouponTypePercentage,
		Value:          decimal.NewFromInt(10),
		DiscountAmount: decimal.NewFromInt(50),
	}}
	carts := &fakeCartReader{snapshot: filledSnapshot()}
	couponService := NewCouponService(validator, carts, drafts)
	sess := authenticatedSession()

	coupon, err := couponService.Apply(c, sess, "SAVE10")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(coupon.DiscountAmount))
	assert.True(t, carts.snapshot.Total.Equal(coupon.CartTotal))

	draft, err := drafts.Draft(c, sess.Key())
	require.NoError(t, err)
	require.NotNil(t, draft.Coupon)
	assert.Equal(t, "SAVE10", draft.Coupon.Code)
}

func TestApplyCouponGuestRejectedWithoutValidation(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	validator := &fakeCouponValidator{}
	carts := &fakeCartReader{snapshot: filledSnapshot()}
	couponService := NewCouponService(validator, carts, drafts)

	_, err := couponService.Apply(c, guestSession(), "SAVE10")
	assert.ErrorIs(t, err, inErrors.ErrLoginRequired)
	assert.Zero(t, validator.calls)
}

func TestApplyCouponEmptyCode(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	validator := &fakeCouponValidator{}
	carts := &fakeCartReader{snapshot: filledSnapshot()}
	couponService := NewCouponService(validator, carts, drafts)

	_, err := couponService.Apply(c, authenticatedSession(), "   ")
	assert.ErrorIs(t, err, inErrors.ErrEmptyCouponCode)
	assert.Zero(t, validator.calls)
}

func TestApplyCouponFailureClearsPreviousCoupon(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	validator := &fakeCouponValidator{coupon: response.Coupon{
		Code:           "SAVE10",
		Type:           response.CouponTypeFixed,
		Value:          decimal.NewFromInt(50),
		DiscountAmount: decimal.NewFromInt(50),
	}}
	carts := &fakeCartReader{snapshot: filledSnapshot()}
	couponService := NewCouponService(validator, carts, drafts)
	sess := authenticatedSession()

	_, err := couponService.Apply(c, sess, "SAVE10")
	require.NoError(t, err)

	validator.err = &client.APIError{Message: "coupon expired", StatusCode: 422}
	_, err = couponService.Apply(c, sess, "EXPIRED")
	require.Error(t, err)
	assert.EqualError(t, err, "coupon expired")

	draft, err := drafts.Draft(c, sess.Key())
	require.NoError(t, err)
	assert.Nil(t, draft.Coupon)
}

func TestRemoveCouponIsIdempotent(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	validator := &fakeCouponValidator{coupon: response.Coupon{
		Code:           "SAVE10",
		DiscountAmount: decimal.NewFromInt(50),
	}}
	carts := &fakeCartReader{snapshot: filledSnapshot()}
	couponService := NewCouponService(validator, carts, drafts)
	sess := authenticatedSession()

	require.NoError(t, couponService.Remove(c, sess))

	_, err := couponService.Apply(c, sess, "SAVE10")
	require.NoError(t, err)
	require.NoError(t, couponService.Remove(c, sess))

	draft, err := drafts.Draft(c, sess.Key())
	require.NoError(t, err)
	assert.Nil(t, draft.Coupon)
}
