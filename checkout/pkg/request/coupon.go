package request

type ApplyCoupon struct {
	Code string `validate:"required" json:"code"`
}
