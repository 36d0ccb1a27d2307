package output

import (
	"os"

	"golang.org/x/term"
)

// IsStdinTTY reports whether stdin is attached to a terminal. Piped stdin
// may carry a private key.
func IsStdinTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
