package hashing

// AlgorithmKind identifies the hashing tier a credential belongs to.
type AlgorithmKind int

const (
	// AlgorithmUnsalted is the oldest tier: a plain MD5 of the password,
	// used only when no legacy digest is configured and the salt is not
	// blowfish.
	AlgorithmUnsalted AlgorithmKind = iota

	// AlgorithmLegacyDigest is a salted and peppered digest named by
	// configuration.
	AlgorithmLegacyDigest

	// AlgorithmBlowfish is the preferred adaptive hash.
	AlgorithmBlowfish
)

// String returns a short lowercase name for k.
func (k AlgorithmKind) String() string {
	switch k {
	case AlgorithmUnsalted:
		return "unsalted"
	case AlgorithmLegacyDigest:
		return "legacy"
	case AlgorithmBlowfish:
		return "blowfish"
	}
	return "unknown"
}

// BlowfishDigestName is the configured digest name that requests blowfish
// hashing for non-blowfish salts.
const BlowfishDigestName = "blowfish"

// Algorithm is the hashing algorithm selected for a credential. It is never
// stored: the salt's shape and the configured legacy digest determine it.
type Algorithm struct {
	Kind AlgorithmKind

	// Digest is the legacy digest name. It is set only for
	// [AlgorithmLegacyDigest].
	Digest string
}

// String returns the algorithm name, e.g. "blowfish" or "legacy:sha1".
func (a Algorithm) String() string {
	if a.Kind == AlgorithmLegacyDigest {
		return a.Kind.String() + ":" + a.Digest
	}
	return a.Kind.String()
}

// DetectAlgorithm derives the algorithm for salt. A blowfish-tagged salt always
// selects [AlgorithmBlowfish]. Any other salt selects the configured legacy
// digest, or [AlgorithmUnsalted] when none is configured. A configured digest
// named "blowfish" selects [AlgorithmBlowfish] regardless of the salt.
func DetectAlgorithm(salt, legacyDigest string) Algorithm {
	if IsBlowfish(salt) {
		return Algorithm{Kind: AlgorithmBlowfish}
	}
	name := normalizeDigestName(legacyDigest)
	switch name {
	case "":
		return Algorithm{Kind: AlgorithmUnsalted}
	case BlowfishDigestName:
		return Algorithm{Kind: AlgorithmBlowfish}
	}
	return Algorithm{Kind: AlgorithmLegacyDigest, Digest: name}
}

// HashInfo carries metadata parsed from a stored credential.
type HashInfo struct {
	// Algorithm is the algorithm that verifies the credential under the
	// hasher's current configuration.
	Algorithm Algorithm

	// Params holds algorithm-specific parameters.
	//
	// For blowfish:
	//   "cost"   → int
	//   "prefix" → string ("$2y", "$2a", …)
	//
	// For legacy digests:
	//   "digest" → string
	Params map[string]any
}

// splitLegacy splits a password at len/2+1 bytes. The second half is empty
// for passwords of fewer than three bytes.
func splitLegacy(pass string) (string, string) {
	n := len(pass)/2 + 1
	if n >= len(pass) {
		return pass, ""
	}
	return pass[:n], pass[n:]
}
