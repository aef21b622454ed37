// Package client is the client side of the plate ledger API.
//
// # Overview
//
// The Client interface lists the calls a front end or admin tool makes.
// GRPCClient implements it over gRPC: it manages the connection, injects
// the access token into every call via an interceptor and maps gRPC status
// codes to sentinel errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrInvalidInput and
// ErrNotFound. Other failures are wrapped as "rpc error: ...".
//
// See Also
//
//   - Interface:  Client
//   - gRPC impl:  GRPCClient
package client
