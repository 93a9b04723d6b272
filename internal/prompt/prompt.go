// Package prompt implements the interactive parameter collector. Visible
// values are read line by line; secrets are read without echoing, so the
// access token never lands in scrollback or shell history.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"ferry/internal/errors"
)

// maxAttempts bounds re-asking for a required field before giving up.
const maxAttempts = 3

// Prompter reads interactive input from a terminal. Out and In are
// injectable so tests can script a session.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	// readSecret reads a secret without echo. Defaults to term.ReadPassword
	// on stdin; tests replace it.
	readSecret func() (string, error)

	reader *bufio.Reader
}

// New creates a prompter bound to stdin/stdout.
func New() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stdout}
}

// Ask prompts for a visible value. Required fields are re-asked up to three
// times on empty input; a still-empty answer fails the run.
func (p *Prompter) Ask(label string, required bool) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintf(p.out(), "%s: ", label)
		line, err := p.readLine()
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line != "" || !required {
			return line, nil
		}
		fmt.Fprintf(p.out(), "Value is required.\n")
	}
	return "", errors.MissingField(label)
}

// AskSecret prompts for a value without echoing it.
func (p *Prompter) AskSecret(label string) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintf(p.out(), "%s: ", label)
		secret, err := p.secret()
		fmt.Fprintln(p.out())
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		secret = strings.TrimSpace(secret)
		if secret != "" {
			return secret, nil
		}
		fmt.Fprintf(p.out(), "Value is required.\n")
	}
	return "", errors.MissingField(label)
}

func (p *Prompter) readLine() (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.in())
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return line, nil
}

func (p *Prompter) secret() (string, error) {
	if p.readSecret != nil {
		return p.readSecret()
	}
	data, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (p *Prompter) in() io.Reader {
	if p.In == nil {
		return os.Stdin
	}
	return p.In
}

func (p *Prompter) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}
