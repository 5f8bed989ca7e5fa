// Command credtool hashes, verifies and generates passwords and manages a
// credential store. Run "credtool help" for usage.
package main

import (
	"os"

	"github.com/hasbyte1/go-credential-utils/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
