package railbed

import (
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/railbed/service/gemspec"
	"github.com/viant/railbed/service/shell"
	"github.com/viant/railbed/tracing"
)

// Option customises a Session at construction time.
type Option func(s *Session)

// WithRailsEnv sets the named environment provisioned into the generated
// project.
func WithRailsEnv(env string) Option {
	return func(s *Session) { s.config.RailsEnv = env }
}

// WithProjectName sets the generated application's directory name.
func WithProjectName(name string) Option {
	return func(s *Session) { s.config.ProjectName = name }
}

// WithKeepInstallation disables deletion of the holder directory after a
// successful run.
func WithKeepInstallation(keep bool) Option {
	return func(s *Session) { s.config.KeepInstallation = keep }
}

// WithConfig replaces the whole configuration.
func WithConfig(config *Config) Option {
	return func(s *Session) {
		if config != nil {
			s.config = config
		}
	}
}

// WithRunner sets the shell execution boundary.
func WithRunner(runner shell.Runner) Option {
	return func(s *Session) { s.runner = runner }
}

// WithFileSystem sets the file system service.
func WithFileSystem(fs afs.Service) Option {
	return func(s *Session) { s.fs = fs }
}

// WithGemResolver sets the dependency-spec lookup service.
func WithGemResolver(resolver gemspec.Resolver) Option {
	return func(s *Session) { s.gems = resolver }
}

// WithTracing configures OpenTelemetry tracing for the session. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. Safe to call multiple times; the first successful
// initialisation wins. An initialisation failure fails New.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Session) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.initErr = fmt.Errorf("railbed: initialise tracing: %w", err)
		}
	}
}
