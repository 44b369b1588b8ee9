// Package flows contains pure-function orchestrators for Engine operations.
//
// Each flow function (RunCompleteLogin, RunValidateSession, RunRefresh, ...)
// takes a typed dependency struct and returns a result without side effects
// beyond those dependencies, so the Engine stays thin and every branch can be
// tested with fakes.
//
// # Architecture boundaries
//
// Flows coordinate the token manager, session store and password hasher. They
// do not own any of them; ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import multiAuth (to avoid import cycles).
//   - Perform I/O directly; all I/O goes through dependency interfaces.
package flows
