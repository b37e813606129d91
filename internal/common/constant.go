package common

const (
	// AuthorizationHeaderName carries the bearer access token on inbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the access token inside the Authorization header.
	BearerPrefix = "Bearer "
)
