package provision

import (
	"context"
	"strconv"
	"strings"

	"ferry/internal/errors"
	"ferry/internal/remote"
)

// Family identifies the package-manager lineage of the remote host.
type Family int

const (
	FamilyUnsupported Family = iota
	FamilyDebian
	FamilyRHEL
	FamilyFedora
	FamilyArch
)

func (f Family) String() string {
	switch f {
	case FamilyDebian:
		return "debian"
	case FamilyRHEL:
		return "rhel"
	case FamilyFedora:
		return "fedora"
	case FamilyArch:
		return "arch"
	default:
		return "unsupported"
	}
}

// OSInfo describes the remote operating system as read from /etc/os-release.
type OSInfo struct {
	ID           string
	VersionID    string
	PrettyName   string
	Family       Family
	VersionMajor int
}

// DetectOS reads /etc/os-release on the remote host and classifies it.
func DetectOS(ctx context.Context, runner remote.Runner) (*OSInfo, error) {
	out, err := runner.Run(ctx, "cat /etc/os-release")
	if err != nil {
		return nil, errors.OSUndetectable(err)
	}
	info := parseOSRelease(out)
	if info.ID == "" {
		return nil, errors.OSUndetectable(nil)
	}
	return info, nil
}

func parseOSRelease(content string) *OSInfo {
	fields := map[string]string{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[key] = strings.Trim(value, `"'`)
	}

	info := &OSInfo{
		ID:         strings.ToLower(fields["ID"]),
		VersionID:  fields["VERSION_ID"],
		PrettyName: fields["PRETTY_NAME"],
	}
	info.Family = classify(info.ID, fields["ID_LIKE"])
	if major, _, ok := strings.Cut(info.VersionID, "."); ok || info.VersionID != "" {
		if n, err := strconv.Atoi(major); err == nil {
			info.VersionMajor = n
		}
	}
	return info
}

func classify(id, idLike string) Family {
	switch id {
	case "debian", "ubuntu", "linuxmint", "raspbian":
		return FamilyDebian
	case "fedora":
		return FamilyFedora
	case "rhel", "centos", "rocky", "almalinux", "ol":
		return FamilyRHEL
	case "arch", "manjaro", "endeavouros":
		return FamilyArch
	}
	for _, like := range strings.Fields(strings.ToLower(idLike)) {
		switch like {
		case "debian", "ubuntu":
			return FamilyDebian
		case "fedora":
			return FamilyFedora
		case "rhel", "centos":
			return FamilyRHEL
		case "arch":
			return FamilyArch
		}
	}
	return FamilyUnsupported
}
