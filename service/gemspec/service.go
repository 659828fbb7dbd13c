package gemspec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/viant/afs"
)

// ErrNotFound is returned when the lockfile carries no spec for the gem.
var ErrNotFound = errors.New("gemspec: not found")

// Spec describes the resolved source of one gem: an exact version pin, or a
// git locator when the gem was sourced from version control.
type Spec struct {
	Name        string
	Version     string
	GitRemote   string
	GitRevision string
}

// GemfileEntry renders the manifest line referencing this spec.
func (s *Spec) GemfileEntry() string {
	if s.GitRemote != "" {
		entry := fmt.Sprintf("gem '%s', :git => '%s'", s.Name, s.GitRemote)
		if s.GitRevision != "" {
			entry += fmt.Sprintf(", :ref => '%s'", s.GitRevision)
		}
		return entry
	}
	return fmt.Sprintf("gem '%s', '%s'", s.Name, s.Version)
}

// Resolver looks up the locked specification of a gem.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*Spec, error)
}

// Service resolves gems against a bundler lockfile.
type Service struct {
	fs       afs.Service
	lockfile string
}

// ServiceOption customises the service.
type ServiceOption func(s *Service)

// WithLockfile overrides the lockfile location.
func WithLockfile(location string) ServiceOption {
	return func(s *Service) { s.lockfile = location }
}

// New creates a lockfile-backed resolver.
func New(fs afs.Service, options ...ServiceOption) *Service {
	s := &Service{fs: fs}
	for _, option := range options {
		option(s)
	}
	return s
}

// Resolve scans the lockfile's GIT and GEM sections for the gem's top-level
// spec entry.
func (s *Service) Resolve(ctx context.Context, name string) (*Spec, error) {
	location, err := s.lockfileLocation()
	if err != nil {
		return nil, err
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("gemspec: read %s: %w", location, err)
	}
	spec := parseLockfile(string(data), name)
	if spec == nil {
		return nil, fmt.Errorf("%w: gem %q in %s", ErrNotFound, name, location)
	}
	return spec, nil
}

// lockfileLocation derives the lockfile path from BUNDLE_GEMFILE when set,
// falling back to the working directory. Bundler names the lockfile after the
// active gemfile.
func (s *Service) lockfileLocation() (string, error) {
	if s.lockfile != "" {
		return s.lockfile, nil
	}
	if gemfile := os.Getenv("BUNDLE_GEMFILE"); gemfile != "" {
		return gemfile + ".lock", nil
	}
	workdir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(workdir, "Gemfile.lock"), nil
}

// Top-level spec entries sit at exactly four spaces of indentation inside a
// "specs:" block; deeper lines are transitive dependencies.
var specLine = regexp.MustCompile(`^ {4}(\S+) \(([^)]+)\)`)

func parseLockfile(content, name string) *Spec {
	var section, remote, revision string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, " ") {
			section = trimmed
			remote, revision = "", ""
			continue
		}
		switch section {
		case "GIT":
			if value, ok := sectionAttribute(trimmed, "remote"); ok {
				remote = value
			}
			if value, ok := sectionAttribute(trimmed, "revision"); ok {
				revision = value
			}
		case "GEM":
		default:
			continue
		}
		if strings.HasPrefix(trimmed, "     ") {
			continue
		}
		match := specLine.FindStringSubmatch(trimmed)
		if match == nil || match[1] != name {
			continue
		}
		spec := &Spec{Name: name, Version: match[2]}
		if section == "GIT" {
			spec.GitRemote = remote
			spec.GitRevision = revision
		}
		return spec
	}
	return nil
}

func sectionAttribute(line, name string) (string, bool) {
	prefix := "  " + name + ": "
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
}
