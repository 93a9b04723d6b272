package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferry/internal/errors"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Prompter{In: strings.NewReader(input), Out: out}, out
}

func TestAskReturnsTrimmedValue(t *testing.T) {
	p, out := newTestPrompter("  deploy  \n")

	got, err := p.Ask("SSH username", true)
	require.NoError(t, err)
	assert.Equal(t, "deploy", got)
	assert.Contains(t, out.String(), "SSH username: ")
}

func TestAskOptionalAcceptsEmpty(t *testing.T) {
	p, _ := newTestPrompter("\n")

	got, err := p.Ask("Branch (default main)", false)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestAskRequiredReasksThenFails(t *testing.T) {
	p, out := newTestPrompter("\n\n\n")

	_, err := p.Ask("SSH host", true)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrMissingField))
	assert.Equal(t, 2, strings.Count(out.String(), "Value is required."),
		"first two empty answers produce a re-ask, the third fails")
}

func TestAskRequiredRecoversOnSecondAttempt(t *testing.T) {
	p, _ := newTestPrompter("\n203.0.113.10\n")

	got, err := p.Ask("SSH host", true)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.10", got)
}

func TestAskSecretDoesNotReadFromLineInput(t *testing.T) {
	secrets := []string{"ghp_supersecret"}
	p := &Prompter{
		In:  strings.NewReader("should-not-be-read\n"),
		Out: &bytes.Buffer{},
		readSecret: func() (string, error) {
			s := secrets[0]
			secrets = secrets[1:]
			return s, nil
		},
	}

	got, err := p.AskSecret("Access token")
	require.NoError(t, err)
	assert.Equal(t, "ghp_supersecret", got)
}

func TestAskSecretRejectsEmpty(t *testing.T) {
	p := &Prompter{
		In:         strings.NewReader(""),
		Out:        &bytes.Buffer{},
		readSecret: func() (string, error) { return "", nil },
	}

	_, err := p.AskSecret("Access token")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrMissingField))
}

func TestAskHandlesEOFWithoutNewline(t *testing.T) {
	p, _ := newTestPrompter("trailing-value")

	got, err := p.Ask("Private key path", true)
	require.NoError(t, err)
	assert.Equal(t, "trailing-value", got)
}
