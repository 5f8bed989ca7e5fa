// Package hashing sets and verifies password credentials while staying
// compatible with every credential format a deployment has ever written.
//
// # Architecture
//
// A [Credential] is the persisted pair {Salt, Hash}. The algorithm that
// produced it is never stored separately: [DetectAlgorithm] derives it from
// the shape of the salt and the configured legacy digest.
//
//   - [AlgorithmBlowfish]: bcrypt with the caller's salt (preferred)
//   - [AlgorithmLegacyDigest]: a configured digest over salt, pepper and a
//     split password (verification of older records)
//   - [AlgorithmUnsalted]: plain MD5 (verification of pre-salt records)
//
// The [Hasher] always creates blowfish credentials when blowfish is
// available. Legacy digests are resolved through a [DigestRegistry].
//
// # Quick start
//
//	h, err := hashing.NewHasher(hashing.Options{Pepper: cfg.Pepper})
//	if err != nil { log.Fatal(err) }
//
//	var cred hashing.Credential
//	_, _ = h.SetSecret(&cred, "my-secret-password")
//	persist(userID, cred.Salt, cred.Hash)
//
//	res, _ := h.Matches(cred, "my-secret-password") // res.Matched == true
//
// # Legacy migration
//
// A successful match against a non-blowfish credential sets
// [MatchResult.ShouldRotate]. Ask the user for a new password, or re-hash
// the one just verified:
//
//	res, _ := h.Matches(cred, password)
//	if res.Matched && res.ShouldRotate {
//	    cred = hashing.Credential{}
//	    _, _ = h.SetSecret(&cred, password)
//	    persist(userID, cred.Salt, cred.Hash)
//	}
//
// # Blowfish format
//
// Blowfish salts are 29 characters: "$2y$11$" followed by 22 characters of
// the bcrypt base64 alphabet. The stored hash is the remaining 31
// characters of the crypt output. The concatenation verifies with
// [golang.org/x/crypto/bcrypt.CompareHashAndPassword] given the password
// with the pepper appended.
package hashing
