// Package common contains shared constants and sentinel errors used across
// plateledger components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// RequestIDHeaderName carries a caller-chosen request id; the server
// generates one when it is absent.
const RequestIDHeaderName = "x-request-id"
