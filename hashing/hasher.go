package hashing

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hasbyte1/go-credential-utils/bcrypt64"
	"github.com/hasbyte1/go-credential-utils/entropy"
)

const (
	// minSaltLength is the shortest stored salt considered valid. Shorter
	// salts are regenerated before hashing.
	minSaltLength = 28

	// minHashLength is the shortest computed hash that can match.
	minHashLength = 29

	// minOutputLength is the length at or below which a raw hash output is
	// treated as a failed computation.
	minOutputLength = 13

	// legacySaltSource is the number of random characters digested into a
	// legacy salt.
	legacySaltSource = 44
)

// Credential is the persisted unit: the salt and the hash, stored verbatim by
// the owning persistence layer.
//
// For blowfish credentials Salt holds the 29-character setting
// ("$2y$11$<22 chars>") and Hash holds the remaining 31 characters of the
// crypt output. Legacy credentials hold a hex salt and a hex digest.
type Credential struct {
	Salt string
	Hash string
}

// IsZero reports whether no secret has been set.
func (c Credential) IsZero() bool {
	return c.Salt == "" && c.Hash == ""
}

// MatchResult is the outcome of [Hasher.Matches].
type MatchResult struct {
	// Matched reports whether the plaintext matches the credential.
	Matched bool

	// ShouldRotate is set on a successful match against a non-blowfish
	// credential when blowfish is available. The owner should prompt the
	// user to change their password so it is re-hashed with blowfish.
	ShouldRotate bool
}

// Options configures a [Hasher].
type Options struct {
	// Pepper is a secret shared by all credentials and mixed into every
	// salted hash. It is never stored with the credential.
	Pepper string

	// LegacyDigest names the digest used for non-blowfish salts (e.g.
	// "sha1"). Empty means unsalted MD5 for those records.
	LegacyDigest string

	// Cost is the blowfish work factor for new salts.
	// Valid range: [bcrypt.MinCost (4), bcrypt.MaxCost (31)].
	// Default: [DefaultBlowfishCost] (11).
	Cost int

	// Prefix is the blowfish tag for new salts ("$2a", "$2b", "$2x" or
	// "$2y"). Default: [DefaultBlowfishPrefix].
	Prefix string

	// DisableBlowfish makes the hasher behave as a runtime without
	// blowfish support: new credentials use the legacy digest and stored
	// blowfish credentials cannot be verified.
	DisableBlowfish bool

	// Entropy supplies salt material. Default: [entropy.New].
	Entropy *entropy.Source

	// Digests resolves LegacyDigest. Default: [NewDefaultDigestRegistry].
	Digests *DigestRegistry

	// Logger receives rotation and failure events. Default: no-op.
	Logger *zap.Logger
}

// DefaultOptions returns Options with the recommended defaults.
func DefaultOptions() Options {
	return Options{
		Cost:   DefaultBlowfishCost,
		Prefix: DefaultBlowfishPrefix,
	}
}

// Hasher sets and verifies credentials.
//
// Blowfish is always preferred. Legacy digests and unsalted MD5 exist so that
// credentials created before blowfish was available can still be verified.
// The algorithm for a credential is derived from its salt on every call (see
// [DetectAlgorithm]).
//
// # Thread safety
//
// Hasher is immutable after construction and safe for concurrent use. The
// [Credential] passed to [Hasher.SetSecret] must not be shared without
// external synchronisation.
type Hasher struct {
	opts    Options
	digests *DigestRegistry
	entropy *entropy.Source
	logger  *zap.Logger
}

// NewHasher constructs a Hasher. Zero-valued Cost and Prefix take their
// defaults. Returns [ErrInvalidOption] for an out-of-range cost or unknown
// prefix, and [ErrUnknownDigest] when LegacyDigest is not registered.
func NewHasher(opts Options) (*Hasher, error) {
	if opts.Cost == 0 {
		opts.Cost = DefaultBlowfishCost
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultBlowfishPrefix
	}
	if opts.Cost < bcrypt.MinCost || opts.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: blowfish cost %d must be in [%d, %d]",
			ErrInvalidOption, opts.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if !validBlowfishPrefix(opts.Prefix) {
		return nil, fmt.Errorf("%w: blowfish prefix %q", ErrInvalidOption, opts.Prefix)
	}

	h := &Hasher{
		opts:    opts,
		digests: opts.Digests,
		entropy: opts.Entropy,
		logger:  opts.Logger,
	}
	if h.digests == nil {
		h.digests = NewDefaultDigestRegistry()
	}
	if h.entropy == nil {
		h.entropy = entropy.New()
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}

	if d := normalizeDigestName(opts.LegacyDigest); d != "" && d != BlowfishDigestName && !h.digests.Has(d) {
		return nil, fmt.Errorf("%w: legacy digest %q", ErrUnknownDigest, opts.LegacyDigest)
	}
	return h, nil
}

// Options returns the hasher's configuration.
func (h *Hasher) Options() Options { return h.opts }

// SupportsBlowfish reports whether the hasher can compute blowfish hashes.
func (h *Hasher) SupportsBlowfish() bool { return !h.opts.DisableBlowfish }

// ──────────────────────────────────────────────────────────────────────────────
// Public operations
// ──────────────────────────────────────────────────────────────────────────────

// SetSecret hashes plain into c.
//
// An empty plain is ignored. When c already holds a salt and hash that plain
// reproduces, c is left untouched and changed is false, so an unchanged
// password never rotates its salt. Otherwise a new salt is generated and the
// complete new pair is assigned to *c at once.
func (h *Hasher) SetSecret(c *Credential, plain string) (changed bool, err error) {
	if plain == "" {
		return false, nil
	}

	if c.Salt != "" && c.Hash != "" && h.storedSaltError(c.Salt) == nil {
		current := *c
		raw, err := h.computeHash(&current, plain)
		if err != nil {
			return false, err
		}
		if current.Salt == c.Salt && hashPart(raw) == c.Hash {
			return false, nil
		}
	}

	var next Credential
	h.ensureSalt(&next)
	raw, err := h.computeHash(&next, plain)
	if err != nil {
		return false, err
	}
	if IsBlowfish(raw) {
		next.Salt = raw[:blowfishSaltLength]
		next.Hash = raw[blowfishSaltLength:]
	} else {
		next.Hash = raw
	}

	*c = next
	h.logger.Debug("credential secret set",
		zap.Stringer("algorithm", DetectAlgorithm(next.Salt, h.opts.LegacyDigest)))
	return true, nil
}

// Matches reports whether plain matches c.
//
// An empty plain never matches. A wrong password and a stored credential that
// cannot match both yield Matched=false; errors are reserved for
// configuration problems such as [ErrBlowfishUnsupported].
func (h *Hasher) Matches(c Credential, plain string) (MatchResult, error) {
	if plain == "" {
		return MatchResult{}, nil
	}
	if err := h.storedSaltError(c.Salt); err != nil {
		h.logger.Warn("stored blowfish salt is malformed", zap.Error(err))
		return MatchResult{}, nil
	}

	raw, err := h.computeHash(&c, plain)
	if err != nil {
		return MatchResult{}, err
	}

	hash := raw
	rotate := false
	if IsBlowfish(raw) {
		hash = raw[blowfishSaltLength:]
	} else if h.SupportsBlowfish() {
		rotate = true
	}

	if len(hash) < minHashLength {
		return MatchResult{}, nil
	}
	if subtle.ConstantTimeCompare([]byte(hash), []byte(c.Hash)) != 1 {
		return MatchResult{}, nil
	}

	if rotate {
		h.logger.Info("credential matched with a legacy hash; rotation recommended",
			zap.Stringer("algorithm", DetectAlgorithm(c.Salt, h.opts.LegacyDigest)))
	}
	return MatchResult{Matched: true, ShouldRotate: rotate}, nil
}

// NeedsRehash reports whether c was produced with something other than the
// hasher's current preference: a non-blowfish credential on a blowfish
// runtime, or a blowfish credential with a different cost.
func (h *Hasher) NeedsRehash(c Credential) bool {
	if !IsBlowfish(c.Salt) {
		return h.SupportsBlowfish()
	}
	cost, err := blowfishCost(c.Salt)
	if err != nil {
		return true
	}
	return cost != h.opts.Cost
}

// Info describes the algorithm and parameters that verify c.
func (h *Hasher) Info(c Credential) (HashInfo, error) {
	if c.IsZero() {
		return HashInfo{}, fmt.Errorf("%w: no secret set", ErrInvalidHash)
	}
	algo := DetectAlgorithm(c.Salt, h.opts.LegacyDigest)
	info := HashInfo{Algorithm: algo, Params: map[string]any{}}
	switch algo.Kind {
	case AlgorithmBlowfish:
		cost, err := blowfishCost(c.Salt)
		if err != nil {
			return HashInfo{}, err
		}
		info.Params["cost"] = cost
		info.Params["prefix"] = c.Salt[:3]
	case AlgorithmLegacyDigest:
		info.Params["digest"] = algo.Digest
	}
	return info, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Hash computation
// ──────────────────────────────────────────────────────────────────────────────

// storedSaltError reports a blowfish salt that is long enough to be kept by
// ensureSalt but cannot be parsed. Such a record never matches and is replaced
// on the next SetSecret.
func (h *Hasher) storedSaltError(salt string) error {
	if !h.SupportsBlowfish() || !IsBlowfish(salt) || len(salt) < minSaltLength {
		return nil
	}
	_, err := parseBlowfishSetting(salt)
	return err
}

// ensureSalt gives c a fresh salt when its current one is too short to be
// valid.
func (h *Hasher) ensureSalt(c *Credential) {
	if len(c.Salt) < minSaltLength {
		c.Salt = h.newSalt()
	}
}

// computeHash returns the raw hash output for plain under c's salt,
// generating a salt first when c has none. Blowfish output includes the
// 29-character setting prefix.
func (h *Hasher) computeHash(c *Credential, plain string) (string, error) {
	if IsBlowfish(c.Salt) && !h.SupportsBlowfish() {
		return "", fmt.Errorf("%w: credential uses %s; did it originate on a newer runtime?",
			ErrBlowfishUnsupported, c.Salt[:3])
	}
	h.ensureSalt(c)

	var (
		out string
		err error
	)
	algo := DetectAlgorithm(c.Salt, h.opts.LegacyDigest)
	switch algo.Kind {
	case AlgorithmBlowfish:
		out, err = h.hashBlowfish(c.Salt, plain)
	case AlgorithmLegacyDigest:
		out, err = h.hashLegacyDigest(algo.Digest, c.Salt, plain)
	default:
		out = hashUnsalted(plain)
	}
	if err != nil {
		return "", err
	}
	if len(out) <= minOutputLength {
		return "", fmt.Errorf("%w: %s output too short", ErrHashFailed, algo)
	}
	return out, nil
}

// hashBlowfish is crypt(plain+pepper, salt).
func (h *Hasher) hashBlowfish(salt, plain string) (string, error) {
	if !h.SupportsBlowfish() {
		return "", fmt.Errorf("%w: blowfish requested by configuration", ErrBlowfishUnsupported)
	}
	return cryptBlowfish([]byte(plain+h.opts.Pepper), salt)
}

// hashLegacyDigest hashes salt + first half + pepper + second half, where the
// first half is len/2+1 bytes. The construction is kept only so existing
// legacy credentials keep verifying; new credentials use it only when
// blowfish is unavailable.
func (h *Hasher) hashLegacyDigest(digest, salt, plain string) (string, error) {
	first, second := splitLegacy(plain)
	return h.digests.Sum(digest, []byte(salt+first+h.opts.Pepper+second))
}

// hashUnsalted is the pre-salt format: hex MD5 of the password alone.
func hashUnsalted(plain string) string {
	sum := md5.Sum([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// newSalt returns a blowfish setting when blowfish is available and a hex
// MD5 of random characters otherwise.
func (h *Hasher) newSalt() string {
	if !h.SupportsBlowfish() {
		return hashUnsalted(bcrypt64.Random(h.entropy, legacySaltSource))
	}
	return fmt.Sprintf("%s$%02d$%s$", h.opts.Prefix, h.opts.Cost, bcrypt64.Random(h.entropy, blowfishSaltChars))
}

// hashPart strips the blowfish setting from raw crypt output.
func hashPart(raw string) string {
	if IsBlowfish(raw) && len(raw) > blowfishSaltLength {
		return raw[blowfishSaltLength:]
	}
	return raw
}
