package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AddLine struct {
	Attributes  map[string]string `                               json:"attributes"`
	Name        string            `validate:"required"            json:"name"`
	ProductID   uuid.UUID         `validate:"required,uuid"       json:"product_id"`
	VariationID *uuid.UUID        `validate:"omitempty,uuid"      json:"variation_id,omitempty"`
	UnitPrice   decimal.Decimal   `validate:"required"            json:"unit_price"`
	Quantity    int32             `validate:"required,gte=1"      json:"quantity"`
}

type SetQuantity struct {
	Quantity int32 `json:"quantity"`
}

type ChangeQuantity struct {
	Delta int32 `validate:"required" json:"delta"`
}
