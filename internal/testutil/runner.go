// Package testutil provides shared test fakes.
package testutil

import (
	"context"
	"strings"
	"sync"
)

// FakeRunner is a scripted remote.Runner. Commands are recorded in order;
// output and failures are selected by substring match against the command.
// Tests should keep match keys disjoint, since map iteration order is
// unspecified.
type FakeRunner struct {
	mu       sync.Mutex
	Commands []string
	Outputs  map[string]string
	Failures map[string]error
}

// NewFakeRunner creates an empty scripted runner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Outputs:  map[string]string{},
		Failures: map[string]error{},
	}
}

// Run records the command and returns the scripted response.
func (r *FakeRunner) Run(_ context.Context, command string) (string, error) {
	r.mu.Lock()
	r.Commands = append(r.Commands, command)
	r.mu.Unlock()

	for key, err := range r.Failures {
		if strings.Contains(command, key) {
			return "", err
		}
	}
	for key, out := range r.Outputs {
		if strings.Contains(command, key) {
			return out, nil
		}
	}
	return "", nil
}

// Ran reports whether any recorded command contains the given substring.
func (r *FakeRunner) Ran(substring string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cmd := range r.Commands {
		if strings.Contains(cmd, substring) {
			return true
		}
	}
	return false
}

// CommandMatching returns the first recorded command containing the given
// substring, or the empty string.
func (r *FakeRunner) CommandMatching(substring string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cmd := range r.Commands {
		if strings.Contains(cmd, substring) {
			return cmd
		}
	}
	return ""
}
