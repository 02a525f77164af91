package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartLine struct {
	Attributes  map[string]string `json:"attributes"`
	Name        string            `json:"name"`
	ID          uuid.UUID         `json:"id"`
	ProductID   uuid.UUID         `json:"product_id"`
	VariationID *uuid.UUID        `json:"variation_id,omitempty"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	Quantity    int32             `json:"quantity"`
}

type CartSnapshot struct {
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// NewCartSnapshot derives the total from its lines. The total is never
// stored independently of the lines.
func NewCartSnapshot(lines []CartLine) CartSnapshot {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt32(line.Quantity)))
	}
	if lines == nil {
		lines = []CartLine{}
	}
	return CartSnapshot{Lines: lines, Total: total}
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}
