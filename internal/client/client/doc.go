// Package client contains the transport-facing building blocks of the
// camkeeper CLI.
//
// # Overview
//
// The package defines the identity provider contract (AuthGateway) and its
// result types: a successful sign-in yields Tokens, a sign-in that needs
// another step yields a Challenge. Concrete gateways live in sub-packages
// (see internal/client/cognito).
//
// # Error Handling
//
// Gateways return *AuthError for every failure, so callers can show
// Message(err) without knowing the provider. Transport-level conditions are
// also exposed as sentinels for errors.Is: ErrUnavailable, ErrUnauthorized.
//
// All operations accept context.Context and must honor cancellation/timeouts.
package client
