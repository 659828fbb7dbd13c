package railbed

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/railbed/internal/ambient"
	"github.com/viant/railbed/service/gemspec"
	"github.com/viant/railbed/service/shell"
)

// railsEnvVariable is the ambient environment variable exported for the
// duration of a run and restored afterwards.
const railsEnvVariable = "RAILS_ENV"

// Session provisions one ephemeral rails application under a container
// directory, activates a named environment, and lets the caller drive
// verification scripts against it. A Session is single-use and not safe for
// concurrent Run calls; callers serialise sessions.
type Session struct {
	containerDir string
	config       *Config

	fs     afs.Service
	runner shell.Runner
	gems   gemspec.Resolver

	// lifecycle state; root and version are set together during provisioning
	// and never unset, running is true only inside Run.
	holder   string
	root     string
	version  *Version
	platform string
	running  bool
	used     bool

	// initErr collects failures raised while options were applied; New
	// surfaces it instead of returning a half-configured session.
	initErr error
}

// New creates a session rooted at the supplied container directory. A
// relative path is resolved against the working directory at construction
// time; Run later changes the working directory, so holder and root paths
// must not depend on it.
func New(containerDir string, options ...Option) (*Session, error) {
	absDir, err := filepath.Abs(containerDir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve container directory %s: %v", ErrFilesystem, containerDir, err)
	}
	s := &Session{
		containerDir: absDir,
		config:       DefaultConfig(),
	}
	for _, option := range options {
		option(s)
	}
	if s.initErr != nil {
		return nil, s.initErr
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.gems == nil {
		s.gems = gemspec.New(s.fs)
	}
	return s, nil
}

// Running reports whether the session is inside an active Run call.
func (s *Session) Running() bool {
	return s.running
}

// Root returns the generated project's path. It is empty before provisioning
// and stays set after Run returns, even when the holder directory has been
// deleted.
func (s *Session) Root() string {
	return s.root
}

// DetectedVersion returns the rails version detected during provisioning, or
// nil before it.
func (s *Session) DetectedVersion() *Version {
	return s.version
}

// RailsEnv returns the named environment the session provisions and activates.
func (s *Session) RailsEnv() string {
	return s.config.RailsEnv
}

// Run provisions the ephemeral project and invokes callback with the session
// while the project root is the working directory and RAILS_ENV carries the
// session's named environment. The prior working directory and RAILS_ENV value
// are restored on every exit path. The holder directory is deleted only after
// the callback returns successfully and only when KeepInstallation is off;
// a failed provisioning or callback leaves the tree in place for inspection.
func (s *Session) Run(ctx context.Context, callback func(ctx context.Context, s *Session) error) (err error) {
	if s.running {
		return ErrSessionRunning
	}
	if s.used {
		return ErrSessionConsumed
	}
	s.used = true
	s.running = true
	defer func() { s.running = false }()

	if s.runner == nil {
		s.runner = shell.New()
		defer func() {
			_ = s.runner.Close()
		}()
	}

	state, err := ambient.Capture(railsEnvVariable)
	if err != nil {
		return fmt.Errorf("%w: capture ambient state: %v", ErrFilesystem, err)
	}
	defer func() {
		if restoreErr := state.Restore(); restoreErr != nil && err == nil {
			err = fmt.Errorf("%w: restore ambient state: %v", ErrFilesystem, restoreErr)
		}
	}()

	if err = s.provision(ctx); err != nil {
		return err
	}
	if err = os.Chdir(s.root); err != nil {
		return fmt.Errorf("%w: enter project root %s: %v", ErrFilesystem, s.root, err)
	}
	if err = os.Setenv(railsEnvVariable, s.config.RailsEnv); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrFilesystem, railsEnvVariable, err)
	}
	log.Printf("railbed: session ready root=%s env=%s rails=%s", s.root, s.config.RailsEnv, s.version)

	if err = callback(ctx, s); err != nil {
		return err
	}

	if !s.config.KeepInstallation {
		if deleteErr := s.fs.Delete(ctx, s.holder); deleteErr != nil {
			return fmt.Errorf("%w: delete holder directory %s: %v", ErrFilesystem, s.holder, deleteErr)
		}
	}
	return nil
}

// mustBeRunning guards operations that require an active Run call.
func (s *Session) mustBeRunning() error {
	if !s.running || s.version == nil {
		return ErrNotRunning
	}
	return nil
}
