// Package credentials stores and verifies user passwords on top of
// [hashing.Hasher].
//
// It is DB-agnostic: persistence is delegated to a user-provided
// [Repository]. A thread-safe in-memory implementation lives in
// credentials/inmemory and a YAML file implementation in
// credentials/filestore.
//
// # Password lifecycle
//
// [Service.SetPassword] hashes a password and saves the new salt and hash
// together. Setting the password a user already has is a no-op.
// [Service.Authenticate] verifies a password; a successful login against a
// legacy credential reports [hashing.MatchResult.ShouldRotate], notifies the
// configured [Notifier] and, with [Config.RehashOnLogin], re-hashes the
// password with blowfish on the spot. [Service.ResetPassword] replaces the
// password with a generated one.
package credentials
