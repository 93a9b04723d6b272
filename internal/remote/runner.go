// Package remote provides the SSH session and SFTP transfer used for all
// remote-host interaction. Every remote step in the deployment runs through
// the Runner interface so provisioning, launch and proxy logic stay
// independently testable against a scripted fake.
package remote

import "context"

// Runner executes a single command on the remote host and returns its
// captured stdout. A non-nil error means the command failed; stderr is
// folded into the error.
type Runner interface {
	Run(ctx context.Context, command string) (string, error)
}
