// Package errors provides typed error definitions for ferry.
// Each error carries a code that classifies the failing deployment stage and
// maps onto a distinct process exit code, so operators and scripts can tell
// a validation failure from a remote provisioning failure.
package errors

import (
	"fmt"
)

// ErrorCode represents a unique identifier for different error types
type ErrorCode string

const (
	// Input validation errors
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrInvalidRepoURL   ErrorCode = "INVALID_REPO_URL"
	ErrInvalidPort      ErrorCode = "INVALID_PORT"
	ErrMissingField     ErrorCode = "MISSING_FIELD"

	// Repository synchronization errors
	ErrGitCloneFailed  ErrorCode = "GIT_CLONE_FAILED"
	ErrGitPullFailed   ErrorCode = "GIT_PULL_FAILED"
	ErrGitCheckout     ErrorCode = "GIT_CHECKOUT_FAILED"
	ErrManifestMissing ErrorCode = "MANIFEST_MISSING"
	ErrManifestInvalid ErrorCode = "MANIFEST_INVALID"

	// Remote provisioning errors
	ErrSSHConnection  ErrorCode = "SSH_CONNECTION"
	ErrOSUndetectable ErrorCode = "OS_UNDETECTABLE"
	ErrOSUnsupported  ErrorCode = "OS_UNSUPPORTED"
	ErrPackageInstall ErrorCode = "PACKAGE_INSTALL"
	ErrRemoteCommand  ErrorCode = "REMOTE_COMMAND"

	// Artifact transfer errors
	ErrTransferFailed ErrorCode = "TRANSFER_FAILED"

	// Launch errors
	ErrLaunchFailed   ErrorCode = "LAUNCH_FAILED"
	ErrTeardownFailed ErrorCode = "TEARDOWN_FAILED"

	// Proxy configuration errors
	ErrProxyConfig   ErrorCode = "PROXY_CONFIG"
	ErrProxyValidate ErrorCode = "PROXY_VALIDATE"
	ErrCertGenerate  ErrorCode = "CERT_GENERATE"

	// Internal errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrLockHeld   ErrorCode = "LOCK_HELD"
	ErrFileSystem ErrorCode = "FILE_SYSTEM"
	ErrCancelled  ErrorCode = "CANCELLED"
)

// Exit codes per error class. Zero is reserved for full success, one for
// anything unclassified (including lock contention).
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitValidation = 2
	ExitSync       = 3
	ExitProvision  = 4
	ExitTransfer   = 5
	ExitLaunch     = 6
	ExitProxy      = 7
)

// FerryError represents a structured error with additional context
type FerryError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *FerryError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *FerryError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the process exit code for this error's class
func (e *FerryError) ExitCode() int {
	switch e.Code {
	case ErrValidationFailed, ErrInvalidRepoURL, ErrInvalidPort, ErrMissingField:
		return ExitValidation
	case ErrGitCloneFailed, ErrGitPullFailed, ErrGitCheckout, ErrManifestMissing, ErrManifestInvalid:
		return ExitSync
	case ErrSSHConnection, ErrOSUndetectable, ErrOSUnsupported, ErrPackageInstall, ErrRemoteCommand:
		return ExitProvision
	case ErrTransferFailed:
		return ExitTransfer
	case ErrLaunchFailed, ErrTeardownFailed:
		return ExitLaunch
	case ErrProxyConfig, ErrProxyValidate, ErrCertGenerate:
		return ExitProxy
	default:
		return ExitGeneral
	}
}

// New creates a new FerryError
func New(code ErrorCode, message string) *FerryError {
	return &FerryError{
		Code:    code,
		Message: message,
	}
}

// NewWithDetails creates a new FerryError with details
func NewWithDetails(code ErrorCode, message, details string) *FerryError {
	return &FerryError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Wrap creates a new FerryError that wraps an existing error
func Wrap(code ErrorCode, message string, cause error) *FerryError {
	return &FerryError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetails creates a new FerryError with details that wraps an existing error
func WrapWithDetails(code ErrorCode, message, details string, cause error) *FerryError {
	return &FerryError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// GetCode extracts the error code from an error, if it's a FerryError
func GetCode(err error) ErrorCode {
	if fe, ok := err.(*FerryError); ok {
		return fe.Code
	}
	return ""
}

// HasCode checks if an error has a specific error code
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// ExitCodeFor returns the exit code for any error. Non-ferry errors map to
// the general failure code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	if fe, ok := err.(*FerryError); ok {
		return fe.ExitCode()
	}
	return ExitGeneral
}
