// Command nforth runs the nforth interpreter: interactively on a terminal,
// over piped standard input, or over script files.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
