package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a seam over term.ReadPassword.
var readPassword = term.ReadPassword

// readSecret reads one secret. On a terminal it prompts on stderr without
// echo; otherwise it consumes the next line of stdin.
func (a *App) readSecret(prompt string) (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.stderr, prompt)
		b, err := readPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return string(b), nil
	}

	if a.lines == nil {
		a.lines = bufio.NewReader(a.stdin)
	}

	line, err := a.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("read secret: no input")
		}
		return "", fmt.Errorf("read secret: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}
