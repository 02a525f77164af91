package response

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	OrderTypeCod     = "cod"
	OrderTypePrepaid = "prepaid"
)

type ShippingFee struct {
	OrderType string          `json:"orderType"`
	ID        int64           `json:"id"`
	Fee       decimal.Decimal `json:"fee"`
	IsDefault bool            `json:"isDefault"`
}

// NormalizeFees accepts every shape the shipping-fee endpoint has been seen
// to answer with: a bare array, or an array wrapped under "fees",
// "shippingFees" or "data". Anything that does not normalize yields an
// empty list, never an error.
func NormalizeFees(body []byte) []ShippingFee {
	fees := []ShippingFee{}
	if err := json.Unmarshal(body, &fees); err == nil {
		return fees
	}

	wrapper := struct {
		Fees         []ShippingFee `json:"fees"`
		ShippingFees []ShippingFee `json:"shippingFees"`
		Data         []ShippingFee `json:"data"`
	}{}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return []ShippingFee{}
	}
	if len(wrapper.Fees) > 0 {
		return wrapper.Fees
	}
	if len(wrapper.ShippingFees) > 0 {
		return wrapper.ShippingFees
	}
	if len(wrapper.Data) > 0 {
		return wrapper.Data
	}
	return []ShippingFee{}
}

// DefaultFee picks the default-flagged tier, falling back to the first
// tier when none carries the flag.
func DefaultFee(fees []ShippingFee) (ShippingFee, bool) {
	if len(fees) == 0 {
		return ShippingFee{}, false
	}
	for _, fee := range fees {
		if fee.IsDefault {
			return fee, true
		}
	}
	return fees[0], true
}
