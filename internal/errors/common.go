package errors

import "fmt"

// Validation errors

func ValidationFailed(field, value, reason string) *FerryError {
	return NewWithDetails(ErrValidationFailed, "Validation failed",
		fmt.Sprintf("Field: %s, Value: %s, Reason: %s", field, value, reason))
}

func MissingField(field string) *FerryError {
	return NewWithDetails(ErrMissingField, "Required field is empty", fmt.Sprintf("Field: %s", field))
}

func InvalidRepoURL(url, reason string) *FerryError {
	return NewWithDetails(ErrInvalidRepoURL, "Invalid repository URL",
		fmt.Sprintf("URL: %s, Reason: %s", url, reason))
}

func InvalidPort(value string) *FerryError {
	return NewWithDetails(ErrInvalidPort, "Invalid application port",
		fmt.Sprintf("Value: %s, expected 1-65535", value))
}

// Synchronization errors

func GitCloneFailed(url string, cause error) *FerryError {
	return WrapWithDetails(ErrGitCloneFailed, "Failed to clone repository",
		fmt.Sprintf("URL: %s", url), cause)
}

func GitPullFailed(branch string, cause error) *FerryError {
	return WrapWithDetails(ErrGitPullFailed, "Failed to pull branch",
		fmt.Sprintf("Branch: %s", branch), cause)
}

func GitCheckoutFailed(branch string, cause error) *FerryError {
	return WrapWithDetails(ErrGitCheckout, "Failed to checkout branch",
		fmt.Sprintf("Branch: %s", branch), cause)
}

func ManifestMissing(dir string) *FerryError {
	return NewWithDetails(ErrManifestMissing,
		"No container build manifest found",
		fmt.Sprintf("Expected a Dockerfile or compose file in %s", dir))
}

// Provisioning errors

func SSHConnectionFailed(host string, cause error) *FerryError {
	return WrapWithDetails(ErrSSHConnection, "Failed to establish SSH connection",
		fmt.Sprintf("Host: %s", host), cause)
}

func OSUndetectable(cause error) *FerryError {
	return Wrap(ErrOSUndetectable, "Unable to detect remote operating system", cause)
}

func OSUnsupported(id string) *FerryError {
	return NewWithDetails(ErrOSUnsupported, "Unsupported operating system",
		fmt.Sprintf("Detected: %s", id))
}

func PackageInstallFailed(command string, cause error) *FerryError {
	return WrapWithDetails(ErrPackageInstall, "Failed to install packages",
		fmt.Sprintf("Command: %s", command), cause)
}

func RemoteCommandFailed(command string, cause error) *FerryError {
	return WrapWithDetails(ErrRemoteCommand, "Remote command failed",
		fmt.Sprintf("Command: %s", command), cause)
}

// Transfer errors

func TransferFailed(path string, cause error) *FerryError {
	return WrapWithDetails(ErrTransferFailed, "Failed to transfer artifact",
		fmt.Sprintf("Path: %s", path), cause)
}

// Launch errors

func LaunchFailed(reason string, cause error) *FerryError {
	return WrapWithDetails(ErrLaunchFailed, "Failed to launch application", reason, cause)
}

// Proxy errors

func ProxyConfigFailed(cause error) *FerryError {
	return Wrap(ErrProxyConfig, "Failed to write proxy configuration", cause)
}

func ProxyValidateFailed(output string, cause error) *FerryError {
	return WrapWithDetails(ErrProxyValidate, "Proxy configuration validation failed", output, cause)
}

func CertGenerateFailed(cause error) *FerryError {
	return Wrap(ErrCertGenerate, "Failed to generate self-signed certificate", cause)
}

// Lock errors

func LockHeld(path string, pid int) *FerryError {
	return NewWithDetails(ErrLockHeld, "Another deployment is already running",
		fmt.Sprintf("Lock: %s, PID: %d", path, pid))
}
