package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName is the HTTP header carrying "Bearer <token>".
const AuthorizationHeaderName = "Authorization"
