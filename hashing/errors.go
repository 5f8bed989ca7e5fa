package hashing

import "errors"

// Sentinel errors returned by hashing operations.
//
// Use [errors.Is] for comparisons:
//
//	ok, err := hasher.Matches(cred, password)
//	if errors.Is(err, hashing.ErrBlowfishUnsupported) {
//	    // the credential was created on a runtime with blowfish support
//	}
var (
	// ErrInvalidOption is returned when [NewHasher] is called with a value
	// outside the allowed range (e.g. a blowfish cost below 4 or above 31).
	ErrInvalidOption = errors.New("hashing: invalid option value")

	// ErrUnknownDigest is returned when a legacy digest name has not been
	// registered with the [DigestRegistry].
	ErrUnknownDigest = errors.New("hashing: unknown digest")

	// ErrEmptyDigestName is returned by [DigestRegistry.Register] when the
	// supplied name is an empty string.
	ErrEmptyDigestName = errors.New("hashing: digest name must not be empty")

	// ErrNilDigest is returned by [DigestRegistry.Register] when a nil
	// constructor is supplied.
	ErrNilDigest = errors.New("hashing: digest constructor must not be nil")

	// ErrBlowfishUnsupported is returned when a credential requires blowfish
	// hashing but the hasher runs without blowfish support. The credential
	// most likely originated on a newer runtime.
	ErrBlowfishUnsupported = errors.New("hashing: blowfish hashing is not supported by this runtime")

	// ErrHashFailed is returned when a hash computation yields a degenerate
	// result, such as a blowfish setting that cannot be parsed.
	ErrHashFailed = errors.New("hashing: unable to generate password hash")

	// ErrInvalidHash is returned by [Hasher.Info] when a stored credential
	// cannot be parsed.
	ErrInvalidHash = errors.New("hashing: invalid or unrecognised credential")
)

// IsConfigurationError reports whether err is one of the fatal configuration
// errors: the credential cannot be verified or created with the current
// settings, as opposed to a plain mismatch.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrBlowfishUnsupported) ||
		errors.Is(err, ErrHashFailed) ||
		errors.Is(err, ErrInvalidOption) ||
		errors.Is(err, ErrUnknownDigest)
}
