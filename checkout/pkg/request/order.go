package request

type GuestContact struct {
	Email     string `validate:"required,email" json:"email"`
	FirstName string `validate:"required"       json:"first_name"`
	LastName  string `validate:"required"       json:"last_name"`
}

type GuestAddress struct {
	AddressText string `validate:"required" json:"address"`
	City        string `validate:"required" json:"city"`
	State       string `validate:"required" json:"state"`
	PostalCode  string `validate:"required" json:"postal_code"`
	Country     string `validate:"required" json:"country"`
	Phone       string `validate:"required" json:"phone"`
}

type PlaceOrder struct {
	PaymentMethod string        `validate:"omitempty,oneof=cod upi card" json:"payment_method"`
	GuestContact  *GuestContact `validate:"omitempty"                    json:"guest_contact,omitempty"`
	GuestAddress  *GuestAddress `validate:"omitempty"                    json:"guest_address,omitempty"`
}
