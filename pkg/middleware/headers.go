package middleware

// Request headers understood by the storefront middleware.
const (
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderUserID        = "X-User-ID"
	HeaderSessionID     = "X-Session-ID"
)
