// Package client contains client-side building blocks for the deadbox CLI.
//
// # Overview
//
// The package provides:
//  1. A transport contract (see the Client interface) for the deadbox REST
//     API: Register, Login, Me, CheckIn, letters and attachment upload.
//  2. A concrete HTTP implementation (see HTTPClient) that injects the
//     bearer access token, transparently refreshes an expired one once and
//     maps error responses to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database with embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotLoggedIn. Other non-2xx
// responses surface as *APIError.
package client
