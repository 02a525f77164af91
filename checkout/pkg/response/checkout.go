package response

type CheckoutStep string

const (
	StepCart     CheckoutStep = "cart"
	StepShipping CheckoutStep = "shipping"
)

func (s CheckoutStep) Valid() bool {
	return s == StepCart || s == StepShipping
}

// Draft is the in-progress composition of cart, shipping and payment
// selections. It exists only in session state and is destroyed on
// successful submission or abandonment.
type Draft struct {
	Address      *ShippingAddress `json:"address,omitempty"`
	Fee          *ShippingFee     `json:"fee,omitempty"`
	Coupon       *Coupon          `json:"coupon,omitempty"`
	GuestContact *GuestContact    `json:"guest_contact,omitempty"`
	GuestAddress *GuestAddress    `json:"guest_address,omitempty"`
}

type GuestContact struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type GuestAddress struct {
	AddressText string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
}

// HasShippingTarget reports whether a registered address or a complete
// guest shipping target is bound.
func (d Draft) HasShippingTarget() bool {
	if d.Address != nil {
		return true
	}
	return d.GuestContact != nil && d.GuestAddress != nil
}

type ShippingOptions struct {
	Addresses       []ShippingAddress `json:"addresses"`
	Fees            []ShippingFee     `json:"fees"`
	SelectedAddress *ShippingAddress  `json:"selected_address,omitempty"`
	SelectedFee     *ShippingFee      `json:"selected_fee,omitempty"`
	NeedsAddress    bool              `json:"needs_address"`
}
