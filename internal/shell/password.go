// ABOUTME: No-echo password prompt for interactive terminals
// ABOUTME: Falls back to the shell's line prompt when input is not a terminal

package shell

import (
	"fmt"
	"io"

	"golang.org/x/term"
)

// TerminalPasswordReader reads passwords from fd without echo. It returns
// nil when fd is not a terminal so the shell keeps its line prompt.
func TerminalPasswordReader(fd int, out io.Writer) PasswordReader {
	if !term.IsTerminal(fd) {
		return nil
	}
	return func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
}
