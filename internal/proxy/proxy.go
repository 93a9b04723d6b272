// Package proxy configures nginx on the remote host as a TLS-terminating
// reverse proxy in front of the deployed application.
package proxy

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"text/template"

	"ferry/internal/constants"
	"ferry/internal/errors"
	"ferry/internal/logger"
	"ferry/internal/remote"
)

const siteName = "ferry-app"

var vhostTemplate = template.Must(template.New("vhost").Parse(`server {
    listen 80;
    server_name {{.Host}};

    location / {
        proxy_pass http://127.0.0.1:{{.Port}};
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-Proto $scheme;
    }
}

server {
    listen 443 ssl;
    server_name {{.Host}};

    ssl_certificate {{.CertPath}};
    ssl_certificate_key {{.KeyPath}};

    location / {
        proxy_pass http://127.0.0.1:{{.Port}};
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Forwarded-Proto $scheme;
    }
}
`))

// Uploader places file content on the remote host. Satisfied by
// remote.Transporter.
type Uploader interface {
	UploadBytes(content []byte, remotePath string, mode os.FileMode) error
}

// Configurer writes the nginx vhost and certificate material and reloads
// nginx once the configuration validates.
type Configurer struct {
	runner   remote.Runner
	uploader Uploader
	host     string
	appPort  int
}

// New creates a Configurer for the given host and application port.
func New(runner remote.Runner, uploader Uploader, host string, appPort int) *Configurer {
	return &Configurer{runner: runner, uploader: uploader, host: host, appPort: appPort}
}

func (c *Configurer) certPath() string { return path.Join(constants.CertDir, c.host+".crt") }
func (c *Configurer) keyPath() string  { return path.Join(constants.CertDir, c.host+".key") }

// Configure installs the certificate pair and vhost, validates the nginx
// configuration and reloads nginx. The reload never happens when
// validation fails.
func (c *Configurer) Configure(ctx context.Context) error {
	if err := c.ensureCertificate(ctx); err != nil {
		return err
	}
	if err := c.installVhost(ctx); err != nil {
		return err
	}
	if err := c.validateAndReload(ctx); err != nil {
		return err
	}
	c.smokeTest(ctx)
	return nil
}

// ensureCertificate generates and installs a self-signed pair unless a
// complete pair from an earlier run is already present. A certificate
// whose key half went missing is regenerated rather than handed to nginx.
func (c *Configurer) ensureCertificate(ctx context.Context) error {
	check := fmt.Sprintf("sudo test -f %s && sudo test -f %s", c.certPath(), c.keyPath())
	if _, err := c.runner.Run(ctx, check); err == nil {
		logger.Infof("Reusing existing certificate %s", c.certPath())
		return nil
	}

	logger.Infof("Generating self-signed certificate for %s", c.host)
	pair, err := GenerateSelfSigned(c.host)
	if err != nil {
		return err
	}

	stagedCert := fmt.Sprintf(".ferry-%s.crt", c.host)
	stagedKey := fmt.Sprintf(".ferry-%s.key", c.host)
	if err := c.uploader.UploadBytes(pair.CertPEM, stagedCert, constants.FilePermissions); err != nil {
		return errors.TransferFailed(stagedCert, err)
	}
	if err := c.uploader.UploadBytes(pair.KeyPEM, stagedKey, constants.SecureFilePermissions); err != nil {
		return errors.TransferFailed(stagedKey, err)
	}

	install := strings.Join([]string{
		fmt.Sprintf("sudo mkdir -p %s", constants.CertDir),
		fmt.Sprintf("sudo install -m 0644 %s %s", stagedCert, c.certPath()),
		fmt.Sprintf("sudo install -m 0600 %s %s", stagedKey, c.keyPath()),
		fmt.Sprintf("rm -f %s %s", stagedCert, stagedKey),
	}, " && ")
	if _, err := c.runner.Run(ctx, install); err != nil {
		return errors.RemoteCommandFailed(install, err)
	}
	return nil
}

func (c *Configurer) installVhost(ctx context.Context) error {
	conf, err := c.renderVhost()
	if err != nil {
		return errors.ProxyConfigFailed(err)
	}

	staged := fmt.Sprintf(".ferry-%s.conf", siteName)
	if err := c.uploader.UploadBytes(conf, staged, constants.FilePermissions); err != nil {
		return errors.TransferFailed(staged, err)
	}

	available := path.Join(constants.NginxSitesAvailable, siteName+".conf")
	enabled := path.Join(constants.NginxSitesEnabled, siteName+".conf")
	install := strings.Join([]string{
		fmt.Sprintf("sudo install -m 0644 %s %s", staged, available),
		fmt.Sprintf("sudo ln -sf %s %s", available, enabled),
		fmt.Sprintf("rm -f %s", staged),
	}, " && ")
	if _, err := c.runner.Run(ctx, install); err != nil {
		return errors.ProxyConfigFailed(err)
	}
	return nil
}

func (c *Configurer) renderVhost() ([]byte, error) {
	var buf bytes.Buffer
	err := vhostTemplate.Execute(&buf, struct {
		Host     string
		Port     int
		CertPath string
		KeyPath  string
	}{c.host, c.appPort, c.certPath(), c.keyPath()})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Configurer) validateAndReload(ctx context.Context) error {
	out, err := c.runner.Run(ctx, "sudo nginx -t")
	if err != nil {
		return errors.ProxyValidateFailed(strings.TrimSpace(out), err)
	}
	if _, err := c.runner.Run(ctx, "sudo systemctl reload nginx"); err != nil {
		return errors.RemoteCommandFailed("systemctl reload nginx", err)
	}
	logger.Infof("Reverse proxy active: http://%s and https://%s", c.host, c.host)
	return nil
}

// smokeTest probes both proxy endpoints and reports the status codes for
// the operator. Error responses are still a reported code, not a failure:
// applications may take a moment to bind their port, so the probes never
// fail the deployment.
func (c *Configurer) smokeTest(ctx context.Context) {
	probes := []string{
		fmt.Sprintf("curl -sS -o /dev/null -w '%%{http_code}' http://127.0.0.1:80 -H 'Host: %s'", c.host),
		fmt.Sprintf("curl -ksS -o /dev/null -w '%%{http_code}' https://127.0.0.1:443 -H 'Host: %s'", c.host),
	}
	for _, probe := range probes {
		out, err := c.runner.Run(ctx, probe)
		if err != nil {
			logger.Warnf("Smoke test %q failed: %v", probe, err)
			continue
		}
		logger.Infof("Smoke test status %s: %s", strings.TrimSpace(out), probe)
	}
}
