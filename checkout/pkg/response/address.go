package response

type ShippingAddress struct {
	AddressText string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
	ID          int64  `json:"id"`
	IsDefault   bool   `json:"is_default"`
}
