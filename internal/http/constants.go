package http

const (
	HeaderContentType = "Content-Type"
	HeaderValueJson   = "application/json"

	KeyHeaderRequestID = "X-Request-Id"
	KeyHeaderSessionID = "X-Session-Id"
)
