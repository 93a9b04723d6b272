// Package constants defines application-wide constants to avoid magic numbers
package constants

import "time"

// Deployment Defaults
const (
	// DefaultBranch is the branch deployed when none is specified
	DefaultBranch = "main"

	// AppName is the fixed image and container name for single-container launches
	AppName = "ferry-app"

	// RemoteWorkDir is the remote directory the repository is transferred
	// into, relative to the SSH user's home directory
	RemoteWorkDir = "ferry-app"
)

// SSH and Remote Execution
const (
	// SSHConnectTimeout bounds remote session establishment
	SSHConnectTimeout = 10 * time.Second

	// SSHPort is the fixed remote shell port
	SSHPort = 22

	// RemoteCommandTimeout bounds any single remote command, package
	// installation included
	RemoteCommandTimeout = 10 * time.Minute
)

// Proxy and TLS
const (
	// NginxSitesAvailable is where the vhost definition is written
	NginxSitesAvailable = "/etc/nginx/sites-available"

	// NginxSitesEnabled is where the vhost definition is linked
	NginxSitesEnabled = "/etc/nginx/sites-enabled"

	// CertDir holds the self-signed certificate pair on the remote host
	CertDir = "/etc/ssl/ferry"

	// CertValidityDays is the self-signed certificate lifetime
	CertValidityDays = 365

	// CertKeyBits is the RSA key size for generated certificates
	CertKeyBits = 2048
)

// File System Permissions
const (
	// DirPermissions is the standard directory permissions for ferry directories
	DirPermissions = 0755

	// FilePermissions is the standard file permissions for ferry config files
	FilePermissions = 0644

	// SecureFilePermissions is used for files containing sensitive data
	SecureFilePermissions = 0600
)

// Database Configuration
const (
	// DefaultMaxOpenConnections is the default maximum number of database connections
	DefaultMaxOpenConnections = 25

	// DefaultMaxIdleConnections is the default maximum number of idle database connections
	DefaultMaxIdleConnections = 5

	// DefaultConnectionTimeout is the default database connection timeout
	DefaultConnectionTimeout = 5 * time.Minute

	// DefaultIdleTimeout is the default database idle connection timeout
	DefaultIdleTimeout = 1 * time.Minute
)
