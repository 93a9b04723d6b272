package remote

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"

	"ferry/internal/constants"
	"ferry/internal/errors"
	"ferry/internal/logger"
)

// Client is an authenticated SSH connection to the deployment target. It
// implements Runner and hands its underlying connection to the SFTP
// transporter.
type Client struct {
	conn *ssh.Client
	host string
}

// Dial opens an SSH connection using key-file authentication and the fixed
// connection timeout.
func Dial(ctx context.Context, user, host, keyPath string) (*Client, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, errors.SSHConnectionFailed(host, fmt.Errorf("failed to read private key %s: %w", keyPath, err))
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, errors.SSHConnectionFailed(host, fmt.Errorf("failed to parse private key: %w", err))
	}

	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         constants.SSHConnectTimeout,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(constants.SSHPort))
	conn, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, errors.SSHConnectionFailed(host, err)
	}

	logger.WithFields(logger.Fields{"host": host, "user": user}).Info("SSH connection established")
	return &Client{conn: conn, host: host}, nil
}

// Run executes a command in a fresh session, capturing stdout. Stderr and
// the exit status are folded into the returned error. The command is
// bounded by the remote command timeout unless the context expires first.
func (c *Client) Run(ctx context.Context, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RemoteCommandTimeout)
	defer cancel()

	session, err := c.conn.NewSession()
	if err != nil {
		return "", errors.RemoteCommandFailed(command, err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Start(command); err != nil {
		return "", errors.RemoteCommandFailed(command, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		session.Signal(ssh.SIGTERM)
		return stdout.String(), errors.RemoteCommandFailed(command, ctx.Err())
	}

	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return stdout.String(), errors.RemoteCommandFailed(command, err)
	}
	return stdout.String(), nil
}

// Host returns the remote host address.
func (c *Client) Host() string {
	return c.host
}

// SSH exposes the underlying connection for the SFTP transporter.
func (c *Client) SSH() *ssh.Client {
	return c.conn
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
