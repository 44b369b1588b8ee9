// Package multiAuth authenticates end users through email or phone-number
// passwords, phone-number one-time codes and federated identity (Google,
// Apple), and tracks one Redis-backed session per signed-in device.
//
// Every successful authentication ends in [Engine.CompleteLogin], which
// issues a JWT access token, a JWT refresh token and a new device session.
// Requests are then admitted by the gates in the middleware package, which
// call [Engine.ValidateSession] or [Engine.VerifyToken].
//
// # Architecture boundaries
//
// multiAuth is the public surface. It exposes [Engine], [Builder], [Config]
// and value types ([SessionBundle], [Identity], [MetricsSnapshot]). Flow
// orchestration lives in internal/flows; token, session, verification and
// password primitives live in their own packages and know nothing of users.
//
// # What this package must NOT do
//
//   - Own the Redis client or the user directory; both are injected.
//   - Surface storage failure details to clients (see autherr.PublicMessage).
//   - Import any sub-package that re-imports multiAuth (no import cycles).
package multiAuth
