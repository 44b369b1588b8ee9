// Package otp implements phone-number verification with short-lived numeric
// codes stored in Redis and delivered by SMS.
//
// A successful [Verifier.Check] leaves a "verified" marker that sign-up reads
// with [Verifier.IsVerified] and removes with [Verifier.Consume].
package otp
