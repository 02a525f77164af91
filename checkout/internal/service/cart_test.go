package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirananta/storefront/checkout/pkg/request"
	inErrors "github.com/kirananta/storefront/internal/errors"
	"github.com/kirananta/storefront/internal/session"
)

func guestSession() session.Session {
	return session.Session{SessionID: uuid.New(), Authenticated: false}
}

func TestGuestCartAddLineMergesMatchingLines(t *testing.T) {
	c := context.Background()
	_, queries := setupPostgres(t, c)
	cartService := NewCartService(queries, nil)
	sess := guestSession()

	productID := uuid.New()
	param := request.AddLine{
		ProductID:  productID,
		Name:       "linen shirt",
		UnitPrice:  decimal.NewFromInt(500),
		Quantity:   2,
		Attributes: map[string]string{"color": "blue", "size": "M"},
	}

	snapshot, err := cartService.AddLine(c, sess, param)
	require.NoError(t, err)
	require.Len(t, snapshot.Lines, 1)
	assert.EqualValues(t, 2, snapshot.Lines[0].Quantity)

	param.Quantity = 3
	snapshot, err = cartService.AddLine(c, sess, param)
	require.NoError(t, err)
	require.Len(t, snapshot.Lines, 1)
	assert.EqualValues(t, 5, snapshot.Lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(2500).Equal(snapshot.Total))

	param.Attributes = map[string]string{"color": "blue", "size": "L"}
	param.Quantity = 1
	snapshot, err = cartService.AddLine(c, sess, param)
	require.NoError(t, err)
	assert.Len(t, snapshot.Lines, 2)
}

func TestGuestCartSetQuantityZeroRemovesLine(t *testing.T) {
	c := context.Background()
	_, queries := setupPostgres(t, c)
	cartService := NewCartService(queries, nil)
	sess := guestSession()

	snapshot, err := cartService.AddLine(c, sess, request.AddLine{
		ProductID: uuid.New(),
		Name:      "wool socks",
		UnitPrice: decimal.NewFromInt(120),
		Quantity:  3,
	})
	require.NoError(t, err)
	require.Len(t, snapshot.Lines, 1)

	snapshot, err = cartService.SetQuantity(c, sess, snapshot.Lines[0].ID, 0)
	require.NoError(t, err)
	assert.True(t, snapshot.IsEmpty())
}

func TestGuestCartChangeQuantityClampsToOne(t *testing.T) {
	c := context.Background()
	_, queries := setupPostgres(t, c)
	cartService := NewCartService(queries, nil)
	sess := guestSession()

	snapshot, err := cartService.AddLine(c, sess, request.AddLine{
		ProductID: uuid.New(),
		Name:      "canvas tote",
		UnitPrice: decimal.NewFromInt(250),
		Quantity:  2,
	})
	require.NoError(t, err)
	lineID := snapshot.Lines[0].ID

	snapshot, err = cartService.ChangeQuantity(c, sess, lineID, -10)
	require.NoError(t, err)
	require.Len(t, snapshot.Lines, 1)
	assert.EqualValues(t, 1, snapshot.Lines[0].Quantity)

	snapshot, err = cartService.ChangeQuantity(c, sess, lineID, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 5, snapshot.Lines[0].Quantity)
}

func TestGuestCartRemoveLineNotFound(t *testing.T) {
	c := context.Background()
	_, queries := setupPostgres(t, c)
	cartService := NewCartService(queries, nil)
	sess := guestSession()

	_, err := cartService.RemoveLine(c, sess, uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrLineNotFound)
}

func TestGuestCartLineMutationsAreSessionScoped(t *testing.T) {
	c := context.Background()
	_, queries := setupPostgres(t, c)
	cartService := NewCartService(queries, nil)
	owner := guestSession()
	other := guestSession()

	snapshot, err := cartService.AddLine(c, owner, request.AddLine{
		ProductID: uuid.New(),
		Name:      "denim jacket",
		UnitPrice: decimal.NewFromInt(1800),
		Quantity:  1,
	})
	require.NoError(t, err)
	lineID := snapshot.Lines[0].ID

	_, err = cartService.RemoveLine(c, other, lineID)
	assert.ErrorIs(t, err, inErrors.ErrLineNotFound)

	_, err = cartService.SetQuantity(c, other, lineID, 0)
	assert.ErrorIs(t, err, inErrors.ErrLineNotFound)

	_, err = cartService.SetQuantity(c, other, lineID, 7)
	assert.ErrorIs(t, err, inErrors.ErrLineNotFound)

	snapshot, err = cartService.Snapshot(c, owner)
	require.NoError(t, err)
	require.Len(t, snapshot.Lines, 1)
	assert.EqualValues(t, 1, snapshot.Lines[0].Quantity)
}

func TestGuestCartClear(t *testing.T) {
	c := context.Background()
	_, queries := setupPostgres(t, c)
	cartService := NewCartService(queries, nil)
	sess := guestSession()

	_, err := cartService.AddLine(c, sess, request.AddLine{
		ProductID: uuid.New(),
		Name:      "silk scarf",
		UnitPrice: decimal.NewFromInt(900),
		Quantity:  1,
	})
	require.NoError(t, err)

	require.NoError(t, cartService.Clear(c, sess))

	snapshot, err := cartService.Snapshot(c, sess)
	require.NoError(t, err)
	assert.True(t, snapshot.IsEmpty())
	assert.True(t, decimal.Zero.Equal(snapshot.Total))
}
