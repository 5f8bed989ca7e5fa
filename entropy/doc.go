// Package entropy produces unpredictable bytes from the strongest provider
// available at runtime.
//
// # Provider chain
//
// A [Source] consults an ordered list of [Provider] values. The defaults,
// strongest first, are:
//
//   - getrandom: the dedicated OS CSPRNG system call (Linux only)
//   - crypto/rand: the Go crypto library reader
//   - /dev/urandom: a direct device read
//
// Each provider's output is XOR-folded into an accumulator. The first
// provider that returns a full buffer ends the fold. When every provider fails
// or returns short, the accumulator is mixed with (and padded from) a fast
// pseudo-random generator, so partial secure entropy is supplemented but never
// discarded.
//
// [Source.Generate] never fails. Callers that must guarantee cryptographic
// strength should inspect [Source.Probe] in their deployment environment.
//
// # Quick start
//
//	src := entropy.New()
//	salt := src.Generate(16)
//
//	// Non-secret noise, skips the provider chain entirely.
//	noise := src.GenerateFast(8)
package entropy
