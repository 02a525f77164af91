package constants

const (
	AppCheckoutService = "checkout-service"
	AppShippingService = "shipping-service"
	AppStorefront      = "storefront"
	AudienceShopper    = "audience-shopper"
)
