// Package middleware is the request gate: HTTP middleware that admits a
// request only after the multiAuth.Engine has verified its tokens.
//
// # Gates
//
//   - [RequireSession]: access token + device id + live session. Stamps the
//     session's activity time.
//   - [RequireSignOutSingle]: access token + device id, no session lookup.
//   - [RequireSignOutAll]: access token only.
//   - [RequireRefreshToken]: refresh token from the X-Refresh-Token header.
//
// Every gate checks its inputs in the order token, device, verification,
// session, and answers failures with a JSON body of the form
// {"message": "...", "statusCode": N}.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. Token
// verification and session lookup are delegated to the Engine.
//
// # What this package must NOT do
//
//   - Create JWTs or sessions.
//   - Access Redis directly.
//   - Leak internal error text to clients.
package middleware
