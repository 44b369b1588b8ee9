// Package internal contains helper utilities that are private to multiAuth.
//
// # Sub-packages
//
//   - config: process configuration for cmd/multiauth
//   - flows: pure-function orchestrators for the Engine's session operations
//   - httpapi: the chi router exposing the Engine over HTTP
//
// # What this package must NOT do
//
//   - Export types that appear in the public multiAuth API.
//   - Be imported by any package outside the multiAuth module.
package internal
