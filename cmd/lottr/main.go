// Command lottr is a resumable, concurrent batch translator for
// line-oriented text corpora: it extracts lines from an input file,
// groups them into token-bounded batches, drives a pool of chat-completion
// workers, and rewrites a byte-accurate translated copy of the original.
package main

import (
	"fmt"
	"os"

	"github.com/mapomagpie/lottr/internal/crash"
)

func main() {
	crash.SafeRun(func() {
		if err := Execute(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	})
}
