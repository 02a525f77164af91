package repository

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kirananta/storefront/checkout/pkg/response"
)

func (l GuestCartLine) Response() (response.CartLine, error) {
	attributes := map[string]string{}
	if len(l.Attributes) > 0 {
		if err := json.Unmarshal(l.Attributes, &attributes); err != nil {
			return response.CartLine{}, fmt.Errorf(
				"failed unmarshaling attributes with error=%w",
				err,
			)
		}
	}
	return response.CartLine{
		ID:          l.ID,
		ProductID:   l.ProductID,
		VariationID: l.VariationID,
		Name:        l.Name,
		UnitPrice:   decimal.NewFromBigInt(l.UnitPrice.Int, l.UnitPrice.Exp),
		Quantity:    l.Quantity,
		Attributes:  attributes,
	}, nil
}

func Snapshot(lines []GuestCartLine) (response.CartSnapshot, error) {
	mapped := make([]response.CartLine, 0, len(lines))
	for _, line := range lines {
		res, err := line.Response()
		if err != nil {
			return response.CartSnapshot{}, err
		}
		mapped = append(mapped, res)
	}
	return response.NewCartSnapshot(mapped), nil
}
