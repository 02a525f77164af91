package log

const (
	KeyAppName       = "app"
	KeyAddressID     = "addressId"
	KeyCartLineID    = "cartLineId"
	KeyConfig        = "config"
	KeyCouponCode    = "couponCode"
	KeyDiscount      = "discount"
	KeyFeeID         = "shippingFeeId"
	KeyOrderID       = "orderId"
	KeyPaymentMethod = "paymentMethod"
	KeyProcess       = "process"
	KeyProductID     = "productId"
	KeyQuantity      = "quantity"
	KeyRequestBody   = "requestBody"
	KeyRequestHeader = "requestHeader"
	KeyRequestHost   = "host"
	KeyRequestID     = "requestId"
	KeyRequestIP     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeySessionID     = "sessionId"
	KeyShipmentID    = "shipmentId"
	KeyStep          = "checkoutStep"
	KeyTag           = "tag"
	KeyTotal         = "total"
	KeyUserID        = "userId"
)
