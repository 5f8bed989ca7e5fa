package entropy

import (
	"math/rand/v2"

	"go.uber.org/zap"
)

// RawLength returns the number of raw bytes to draw so that their base64-style
// encoding is at least encodedLen characters long.
func RawLength(encodedLen int) int {
	return encodedLen*3/4 + 1
}

// Source draws bytes from an ordered provider chain with a fast pseudo-random
// fallback.
//
// # Thread safety
//
// Source is immutable after construction and safe for concurrent use, as
// long as the configured providers and fast function are.
type Source struct {
	providers []Provider
	fast      func() uint64
	logger    *zap.Logger
}

// Option configures a [Source].
type Option func(*Source)

// WithProviders replaces the provider chain. Providers are consulted in the
// given order.
func WithProviders(p ...Provider) Option {
	return func(s *Source) {
		s.providers = append([]Provider(nil), p...)
	}
}

// WithDevice changes the path read by the device provider of the default
// chain. It has no effect when combined with [WithProviders].
func WithDevice(path string) Option {
	return func(s *Source) {
		for i := range s.providers {
			if s.providers[i].Name == ProviderDevice {
				s.providers[i].Read = deviceReader(path)
			}
		}
	}
}

// WithFast replaces the fast pseudo-random generator.
func WithFast(fn func() uint64) Option {
	return func(s *Source) {
		if fn != nil {
			s.fast = fn
		}
	}
}

// WithLogger sets the logger used to report entropy degradation.
func WithLogger(l *zap.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Source using [DefaultProviders] unless overridden.
func New(opts ...Option) *Source {
	s := &Source{
		providers: DefaultProviders(""),
		fast:      rand.Uint64,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate returns exactly n unpredictable bytes. It never fails: when no
// provider delivers a full buffer, the shortfall is filled from the fast
// generator, which is XOR-combined with any partial secure output.
func (s *Source) Generate(n int) []byte {
	if n <= 0 {
		return []byte{}
	}

	var acc []byte
	valid := false
	for _, p := range s.providers {
		b, ok := p.Read(n)
		acc = xorInto(acc, b)
		if ok && len(b) >= n {
			valid = true
			break
		}
		s.logger.Debug("entropy provider unavailable",
			zap.String("provider", p.Name),
			zap.Int("requested", n),
			zap.Int("received", len(b)))
	}

	if valid && len(acc) >= n {
		return acc[:n]
	}

	s.logger.Warn("no secure entropy provider satisfied the request; supplementing with fast generator",
		zap.Int("requested", n),
		zap.Int("secure_bytes", len(acc)))
	return s.supplement(acc, n)
}

// GenerateFast returns n bytes from the fast generator only. Use it for
// non-secret randomness.
func (s *Source) GenerateFast(n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	return s.supplement(nil, n)
}

// Uint64 returns a value from the fast generator.
func (s *Source) Uint64() uint64 {
	return s.fast()
}

// supplement XORs every byte of acc with fast output and pads it to n.
func (s *Source) supplement(acc []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, acc)
	var word uint64
	for i := 0; i < n; i++ {
		if i%8 == 0 {
			word = s.fast()
		}
		out[i] ^= byte(word >> (8 * (i % 8)))
	}
	return out
}

// xorInto XORs b into acc, growing acc when b is longer.
func xorInto(acc, b []byte) []byte {
	for i, c := range b {
		if i < len(acc) {
			acc[i] ^= c
		} else {
			acc = append(acc, c)
		}
	}
	return acc
}

// ──────────────────────────────────────────────────────────────────────────────
// Diagnostics
// ──────────────────────────────────────────────────────────────────────────────

// Sample is the output of one provider collected by [Source.Probe].
type Sample struct {
	Provider  string
	Bytes     []byte
	Available bool
}

// Probe runs every provider, even after one succeeds, followed by the fast
// generator, and returns each raw output for inspection. It exists for
// diagnostics; [Source.Generate] never uses it.
func (s *Source) Probe(n int) []Sample {
	out := make([]Sample, 0, len(s.providers)+1)
	for _, p := range s.providers {
		b, ok := p.Read(n)
		out = append(out, Sample{
			Provider:  p.Name,
			Bytes:     b,
			Available: ok && len(b) >= n,
		})
	}
	out = append(out, Sample{
		Provider:  ProviderFast,
		Bytes:     s.GenerateFast(n),
		Available: true,
	})
	return out
}
