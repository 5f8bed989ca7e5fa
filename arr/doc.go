// Package arr provides small generic helpers for Go slices, in the spirit of
// PHP's array_* functions.
//
// All helpers operate on plain []T values and never modify their input:
//
//	digits := arr.Count(pw, isDigit)
//	pool   := arr.Diff(arr.Unique(symbols), disallowed)
//	picked := arr.Random(pool, 3, rng)
//
// # Randomisation
//
// Shuffle, Random and Pick take an explicit [Source] instead of reaching for
// a package-level generator, so callers decide how the generator is seeded
// and synchronised. *math/rand/v2.Rand satisfies [Source].
package arr
