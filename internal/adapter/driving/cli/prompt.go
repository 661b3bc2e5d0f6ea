package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PasswordReader prompts for and returns one password.
type PasswordReader func(prompt string) (string, error)

// TerminalPrompt reads passwords without echo when in is a terminal. When in
// is a pipe it reads one line per call instead, so scripts can feed input.
// Prompts go to out.
func TerminalPrompt(in *os.File, out io.Writer) PasswordReader {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return LinePrompt(in)
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

// LinePrompt reads one line from r per call. The trailing newline (and a
// preceding carriage return) is dropped; other whitespace is kept.
func LinePrompt(r io.Reader) PasswordReader {
	br := bufio.NewReader(r)
	return func(string) (string, error) {
		line, err := br.ReadString('\n')
		switch {
		case errors.Is(err, io.EOF) && line == "":
			return "", errors.New("reading password: no input")
		case err != nil && !errors.Is(err, io.EOF):
			return "", fmt.Errorf("reading password: %w", err)
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		return line, nil
	}
}
