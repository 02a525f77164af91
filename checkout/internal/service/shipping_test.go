package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirananta/storefront/checkout/pkg/request"
	"github.com/kirananta/storefront/checkout/pkg/response"
	"github.com/kirananta/storefront/internal/session"
)

type fakeShippingBackend struct {
	addresses []response.ShippingAddress
	fees      []response.ShippingFee
	listCalls int
}

func (f *fakeShippingBackend) ListAddresses(
	c context.Context,
	sess session.Session,
) ([]response.ShippingAddress, error) {
	f.listCalls++
	return f.addresses, nil
}

func (f *fakeShippingBackend) CreateAddress(
	c context.Context,
	sess session.Session,
	param request.Address,
) error {
	f.addresses = append(f.addresses, response.ShippingAddress{
		ID:          int64(len(f.addresses) + 1),
		AddressText: param.AddressText,
		City:        param.City,
	})
	return nil
}

func (f *fakeShippingBackend) UpdateAddress(
	c context.Context,
	sess session.Session,
	addressID int64,
	param request.Address,
) error {
	return nil
}

func (f *fakeShippingBackend) DeleteAddress(
	c context.Context,
	sess session.Session,
	addressID int64,
) error {
	kept := f.addresses[:0]
	for _, address := range f.addresses {
		if address.ID != addressID {
			kept = append(kept, address)
		}
	}
	f.addresses = kept
	return nil
}

func (f *fakeShippingBackend) SetDefaultAddress(
	c context.Context,
	sess session.Session,
	addressID int64,
) error {
	for i := range f.addresses {
		f.addresses[i].IsDefault = f.addresses[i].ID == addressID
	}
	return nil
}

func (f *fakeShippingBackend) FetchShippingFees(c context.Context) ([]response.ShippingFee, error) {
	return f.fees, nil
}

func testFees() []response.ShippingFee {
	return []response.ShippingFee{
		{ID: 1, OrderType: response.OrderTypePrepaid, Fee: decimal.NewFromInt(0)},
		{ID: 2, OrderType: response.OrderTypeCod, Fee: decimal.NewFromInt(49), IsDefault: true},
	}
}

func TestShippingOptionsAutoSelectsDefaults(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	backend := &fakeShippingBackend{
		addresses: []response.ShippingAddress{
			{ID: 1, AddressText: "12 MG Road", City: "Bengaluru"},
			{ID: 2, AddressText: "4 Park Street", City: "Kolkata", IsDefault: true},
		},
		fees: testFees(),
	}
	shippingService := NewShippingService(backend, drafts)
	sess := authenticatedSession()

	options, err := shippingService.Options(c, sess)
	require.NoError(t, err)
	require.NotNil(t, options.SelectedAddress)
	assert.EqualValues(t, 2, options.SelectedAddress.ID)
	require.NotNil(t, options.SelectedFee)
	assert.EqualValues(t, 2, options.SelectedFee.ID)
	assert.False(t, options.NeedsAddress)

	draft, err := drafts.Draft(c, sess.Key())
	require.NoError(t, err)
	require.NotNil(t, draft.Address)
	assert.EqualValues(t, 2, draft.Address.ID)
}

func TestShippingOptionsGuestSkipsAddressBook(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	backend := &fakeShippingBackend{fees: testFees()}
	shippingService := NewShippingService(backend, drafts)

	options, err := shippingService.Options(c, guestSession())
	require.NoError(t, err)
	assert.Zero(t, backend.listCalls)
	assert.Empty(t, options.Addresses)
	assert.False(t, options.NeedsAddress)
	require.NotNil(t, options.SelectedFee)
	assert.EqualValues(t, 2, options.SelectedFee.ID)
}

func TestShippingOptionsFlagsMissingAddress(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	backend := &fakeShippingBackend{fees: testFees()}
	shippingService := NewShippingService(backend, drafts)

	options, err := shippingService.Options(c, authenticatedSession())
	require.NoError(t, err)
	assert.True(t, options.NeedsAddress)
	assert.Nil(t, options.SelectedAddress)
}

func TestShippingSelectBindsAddressAndFee(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	backend := &fakeShippingBackend{
		addresses: []response.ShippingAddress{{ID: 1, AddressText: "12 MG Road", City: "Bengaluru"}},
		fees:      testFees(),
	}
	shippingService := NewShippingService(backend, drafts)
	sess := authenticatedSession()

	addressID := int64(1)
	draft, err := shippingService.Select(c, sess, request.SelectShipping{
		AddressID: &addressID,
		FeeID:     1,
	})
	require.NoError(t, err)
	require.NotNil(t, draft.Address)
	assert.EqualValues(t, 1, draft.Address.ID)
	require.NotNil(t, draft.Fee)
	assert.EqualValues(t, 1, draft.Fee.ID)

	stored, err := drafts.Draft(c, sess.Key())
	require.NoError(t, err)
	require.NotNil(t, stored.Fee)
	assert.EqualValues(t, 1, stored.Fee.ID)
}

func TestShippingSelectBindsGuestTargetAndPassesStepGate(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	backend := &fakeShippingBackend{fees: testFees()}
	shippingService := NewShippingService(backend, drafts)
	checkoutService := NewCheckoutService(drafts, &fakeCartReader{snapshot: filledSnapshot()})
	sess := guestSession()

	_, err := checkoutService.NextStep(c, sess)
	require.NoError(t, err)

	draft, err := shippingService.Select(c, sess, request.SelectShipping{
		GuestContact: &request.GuestContact{
			Email:     "asha@post.test",
			FirstName: "Asha",
			LastName:  "Nair",
		},
		GuestAddress: &request.GuestAddress{
			AddressText: "7 Marine Drive",
			City:        "Kochi",
			State:       "Kerala",
			PostalCode:  "682001",
			Country:     "India",
			Phone:       "9812345678",
		},
		FeeID: 2,
	})
	require.NoError(t, err)
	require.NotNil(t, draft.GuestContact)
	require.NotNil(t, draft.GuestAddress)
	assert.True(t, draft.HasShippingTarget())
	assert.Zero(t, backend.listCalls)

	step, err := checkoutService.NextStep(c, sess)
	require.NoError(t, err)
	assert.Equal(t, response.StepShipping, step)
}

func TestShippingSelectUnknownFee(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	backend := &fakeShippingBackend{fees: testFees()}
	shippingService := NewShippingService(backend, drafts)

	_, err := shippingService.Select(c, authenticatedSession(), request.SelectShipping{FeeID: 99})
	assert.Error(t, err)
}

func TestShippingCreateAddressRefetchesList(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	backend := &fakeShippingBackend{fees: testFees()}
	shippingService := NewShippingService(backend, drafts)

	addresses, err := shippingService.CreateAddress(c, authenticatedSession(), request.Address{
		AddressText: "12 MG Road",
		City:        "Bengaluru",
		State:       "Karnataka",
		PostalCode:  "560001",
		Country:     "India",
		Phone:       "9812345678",
	})
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, "12 MG Road", addresses[0].AddressText)
	assert.Equal(t, "Bengaluru", addresses[0].City)
	assert.Equal(t, 1, backend.listCalls)
}

func TestShippingDeleteAddressUnbindsDraft(t *testing.T) {
	c := context.Background()
	drafts := NewDraftStore(setupRedis(t, c))
	backend := &fakeShippingBackend{
		addresses: []response.ShippingAddress{{ID: 1, AddressText: "12 MG Road", City: "Bengaluru"}},
		fees:      testFees(),
	}
	shippingService := NewShippingService(backend, drafts)
	sess := authenticatedSession()

	addressID := int64(1)
	_, err := shippingService.Select(c, sess, request.SelectShipping{AddressID: &addressID, FeeID: 1})
	require.NoError(t, err)

	addresses, err := shippingService.DeleteAddress(c, sess, addressID)
	require.NoError(t, err)
	assert.Empty(t, addresses)

	draft, err := drafts.Draft(c, sess.Key())
	require.NoError(t, err)
	assert.Nil(t, draft.Address)
}
