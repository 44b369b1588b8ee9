// Package userstore provides multiAuth.UserDirectory implementations.
//
// [Memory] keeps users in process memory. [SQL] stores them in Postgres
// (pgx stdlib driver) or SQLite (modernc.org/sqlite); its schema ships
// embedded and is applied with [SQL.Migrate] through golang-migrate.
//
// Every lookup returns (nil, nil) when no user matches, and Create reports
// uniqueness violations as multiAuth.ErrDuplicateEmail or
// multiAuth.ErrDuplicatePhoneNumber.
package userstore
