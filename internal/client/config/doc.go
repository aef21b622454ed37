// Package config loads runtime configuration for the plate ledger CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/--config. Comments are allowed.
//  3. Global flags given before the command name, which override both.
//
// The access token falls back to the PLATELEDGER_TOKEN environment
// variable when neither the file nor the flags set one.
//
// Supported flags
//
//	-a, --addr string       address:port of the ledger gRPC endpoint
//	-k, --token string      access token
//	-t, --timeout duration  per-call timeout
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "access_token": "eyJ...",
//	  "request_timeout": "10s"
//	}
package config
