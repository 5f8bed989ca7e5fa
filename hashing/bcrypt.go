package hashing

import (
	"fmt"
	"strconv"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/blowfish"

	"github.com/hasbyte1/go-credential-utils/bcrypt64"
)

const (
	// DefaultBlowfishCost is the work factor used for new blowfish salts.
	// Each increment doubles the hashing time.
	DefaultBlowfishCost = 11

	// DefaultBlowfishPrefix is the algorithm tag written into new salts.
	DefaultBlowfishPrefix = "$2y"

	// blowfishSaltLength is the length of a blowfish setting string:
	// "$2y$11$" followed by 22 salt characters. Everything after it in a
	// crypt result is the hash proper.
	blowfishSaltLength = 29

	// blowfishSaltChars is the number of encoded salt characters.
	blowfishSaltChars = 22

	// blowfishHashBytes is the number of cipher bytes encoded in the output.
	// bcrypt encodes 23 of the 24 bytes for compatibility with the C
	// implementation.
	blowfishHashBytes = 23
)

// magicCipherData is "OrpheanBeholderScryDoubt", the bcrypt plaintext.
var magicCipherData = []byte{
	0x4f, 0x72, 0x70, 0x68,
	0x65, 0x61, 0x6e, 0x42,
	0x65, 0x68, 0x6f, 0x6c,
	0x64, 0x65, 0x72, 0x53,
	0x63, 0x72, 0x79, 0x44,
	0x6f, 0x75, 0x62, 0x74,
}

// IsBlowfish reports whether s carries a blowfish algorithm tag ($2a, $2b,
// $2x or $2y). It works on salts and on full crypt output alike.
//
// All four tags hash with the corrected algorithm. A $2x credential created
// by a crypt implementation with the pre-2011 sign-extension bug verifies
// only when its password is plain ASCII; one containing bytes at or above
// 0x80 never matches and must be reset.
func IsBlowfish(s string) bool {
	if len(s) < 3 || s[0] != '$' || s[1] != '2' {
		return false
	}
	switch s[2] {
	case 'a', 'b', 'x', 'y':
		return true
	}
	return false
}

func validBlowfishPrefix(p string) bool {
	return len(p) == 3 && IsBlowfish(p)
}

// blowfishSetting is a parsed "$2y$11$<salt>" string.
type blowfishSetting struct {
	prefix string
	cost   int
	salt   []byte
}

// parseBlowfishSetting parses the first 29 characters of s.
func parseBlowfishSetting(s string) (blowfishSetting, error) {
	if len(s) < blowfishSaltLength || !IsBlowfish(s) || s[3] != '$' || s[6] != '$' {
		return blowfishSetting{}, fmt.Errorf("%w: malformed blowfish setting", ErrHashFailed)
	}
	cost, err := strconv.Atoi(s[4:6])
	if err != nil {
		return blowfishSetting{}, fmt.Errorf("%w: malformed blowfish cost %q", ErrHashFailed, s[4:6])
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return blowfishSetting{}, fmt.Errorf("%w: blowfish cost %d must be in [%d, %d]",
			ErrHashFailed, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	encoded := s[7:blowfishSaltLength]
	if !bcrypt64.Valid(encoded) {
		return blowfishSetting{}, fmt.Errorf("%w: blowfish salt has invalid characters", ErrHashFailed)
	}
	salt, err := bcrypt64.Decode(encoded)
	if err != nil {
		return blowfishSetting{}, fmt.Errorf("%w: blowfish salt: %v", ErrHashFailed, err)
	}
	return blowfishSetting{prefix: s[:3], cost: cost, salt: salt}, nil
}

// cryptBlowfish hashes password with the salt and cost encoded in setting and
// returns the 60-character modular crypt string. The salt is re-encoded in
// canonical form, so the first 29 characters of the result may differ from
// setting in the low bits of the last salt character.
//
// Unlike [bcrypt.GenerateFromPassword], the salt is supplied by the caller,
// which lets stored salts be reused verbatim. The output verifies with
// [bcrypt.CompareHashAndPassword]. Passwords longer than 72 bytes are
// truncated, as in the C implementation.
func cryptBlowfish(password []byte, setting string) (string, error) {
	st, err := parseBlowfishSetting(setting)
	if err != nil {
		return "", err
	}

	c, err := expensiveBlowfishSetup(password, uint32(st.cost), st.salt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashFailed, err)
	}

	cipherData := make([]byte, len(magicCipherData))
	copy(cipherData, magicCipherData)
	for i := 0; i < len(cipherData); i += 8 {
		for j := 0; j < 64; j++ {
			c.Encrypt(cipherData[i:i+8], cipherData[i:i+8])
		}
	}

	return fmt.Sprintf("%s$%02d$%s%s",
		st.prefix,
		st.cost,
		bcrypt64.EncodeToString(st.salt),
		bcrypt64.EncodeToString(cipherData[:blowfishHashBytes]),
	), nil
}

// expensiveBlowfishSetup runs the EksBlowfish key schedule.
func expensiveBlowfishSetup(key []byte, cost uint32, salt []byte) (*blowfish.Cipher, error) {
	// The NUL terminator is part of the key, as in C.
	ckey := append(key[:len(key):len(key)], 0)

	c, err := blowfish.NewSaltedCipher(ckey, salt)
	if err != nil {
		return nil, err
	}

	rounds := uint64(1) << cost
	for i := uint64(0); i < rounds; i++ {
		blowfish.ExpandKey(ckey, c)
		blowfish.ExpandKey(salt, c)
	}
	return c, nil
}

// blowfishCost returns the work factor encoded in a blowfish salt.
func blowfishCost(salt string) (int, error) {
	st, err := parseBlowfishSetting(salt)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return st.cost, nil
}
