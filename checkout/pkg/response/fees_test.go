package response

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFeesBareArray(t *testing.T) {
	body := []byte(`[{"id":1,"orderType":"cod","fee":"49.00","isDefault":true}]`)

	fees := NormalizeFees(body)

	require.Len(t, fees, 1)
	assert.EqualValues(t, 1, fees[0].ID)
	assert.Equal(t, OrderTypeCod, fees[0].OrderType)
	assert.True(t, decimal.NewFromInt(49).Equal(fees[0].Fee))
	assert.True(t, fees[0].IsDefault)
}

func TestNormalizeFeesWrappedArrays(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "wrapped under fees",
			body: `{"fees":[{"id":2,"orderType":"prepaid","fee":"0","isDefault":false}]}`,
		},
		{
			name: "wrapped under shippingFees",
			body: `{"shippingFees":[{"id":2,"orderType":"prepaid","fee":"0","isDefault":false}]}`,
		},
		{
			name: "wrapped under data",
			body: `{"data":[{"id":2,"orderType":"prepaid","fee":"0","isDefault":false}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fees := NormalizeFees([]byte(tt.body))

			require.Len(t, fees, 1)
			assert.EqualValues(t, 2, fees[0].ID)
			assert.Equal(t, OrderTypePrepaid, fees[0].OrderType)
		})
	}
}

func TestNormalizeFeesUnrecognizedShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "object without known wrapper", body: `{"tiers":[{"id":1}]}`},
		{name: "scalar", body: `42`},
		{name: "malformed json", body: `{"fees":`},
		{name: "empty object", body: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fees := NormalizeFees([]byte(tt.body))

			assert.NotNil(t, fees)
			assert.Empty(t, fees)
		})
	}
}

func TestDefaultFeePrefersFlaggedTier(t *testing.T) {
	fees := []ShippingFee{
		{ID: 1, OrderType: OrderTypePrepaid},
		{ID: 2, OrderType: OrderTypeCod, IsDefault: true},
	}

	fee, ok := DefaultFee(fees)

	require.True(t, ok)
	assert.EqualValues(t, 2, fee.ID)
}

func TestDefaultFeeFallsBackToFirstTier(t *testing.T) {
	fees := []ShippingFee{
		{ID: 7, OrderType: OrderTypePrepaid},
		{ID: 8, OrderType: OrderTypeCod},
	}

	fee, ok := DefaultFee(fees)

	require.True(t, ok)
	assert.EqualValues(t, 7, fee.ID)
}

func TestDefaultFeeEmpty(t *testing.T) {
	_, ok := DefaultFee(nil)
	assert.False(t, ok)
}
