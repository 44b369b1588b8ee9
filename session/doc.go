// Package session is the Redis-backed store of per-device sessions.
//
// # Layout
//
// Each session is a hash at <prefix>:<subjectId>:<deviceId> with the fields
// userId, deviceId, ip, userAgent and lastActivity (RFC 3339, UTC). The TTL is
// set once, when the session is created; activity updates do not extend it.
//
// # Architecture boundaries
//
// This package owns the [Store] and the [Session] model. It does not verify
// tokens or decide whether a request is allowed; the Engine does.
//
// # What this package must NOT do
//
//   - Import multiAuth or jwt.
//   - Retry failed Redis calls.
//   - Store secrets in [Session] fields.
package session
