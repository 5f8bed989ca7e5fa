// Package passgen synthesises random passwords that satisfy composition
// constraints, and random alphanumeric strings.
//
// A password starts as a base64-style string from an [entropy.Source], which
// is then adjusted in a fixed order: symbols, upper-case quota, lower-case
// minimum, digit minimum and maximum, disallowed characters. Characters
// added to meet a minimum are trimmed back to the drawn length where other
// classes have room to spare, and the result is shuffled.
//
//	g := passgen.New(entropy.New())
//	pw, err := g.Generate(passgen.DefaultConstraints())
//
// With [DefaultConstraints] a password is 7 to 15 characters long, holds at
// least one upper-case letter, one lower-case letter and one digit, and never
// contains O, 0, I, 1 or l in either case.
package passgen
