// Package password implements the credential hasher: one-way, salted password
// hashing with Argon2id (default) or bcrypt.
//
// # Output format
//
// Argon2id hashes are PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// bcrypt hashes use the usual $2a$<cost>$ modular crypt form, so hashes created
// by earlier bcrypt-based deployments keep verifying.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. It enforces the minimum
// password length on Hash; everything else about account policy belongs to the
// Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Import any other multiAuth package.
//   - Log plaintext passwords.
package password
