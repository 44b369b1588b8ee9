// Package jwt is the token issuer: it signs access and refresh tokens for a
// subject and verifies them, reporting failures as Unauthorized errors that
// carry the verification reason.
package jwt
