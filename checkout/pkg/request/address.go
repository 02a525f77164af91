package request

type Address struct {
	AddressText string `validate:"required" json:"address"`
	City        string `validate:"required" json:"city"`
	State       string `validate:"required" json:"state"`
	PostalCode  string `validate:"required" json:"postal_code"`
	Country     string `validate:"required" json:"country"`
	Phone       string `validate:"required" json:"phone"`
	IsDefault   bool   `                    json:"is_default"`
}

type SelectShipping struct {
	AddressID    *int64        `validate:"omitempty" json:"address_id,omitempty"`
	GuestContact *GuestContact `validate:"omitempty" json:"guest_contact,omitempty"`
	GuestAddress *GuestAddress `validate:"omitempty" json:"guest_address,omitempty"`
	FeeID        int64         `validate:"required"  json:"fee_id"`
}
