package railbed

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/viant/afs/file"
	"github.com/viant/railbed/internal/clock"
	"github.com/viant/railbed/internal/yml"
	"github.com/viant/railbed/service/shell"
	"github.com/viant/railbed/tracing"
)

const (
	manifestName       = "Gemfile"
	databaseConfigPath = "config/database.yml"
	environmentsDir    = "config/environments"

	// referenceEnv is the environment whose configuration gets duplicated
	// when the session's named environment has none of its own.
	referenceEnv = "test"
)

var (
	versionQueryPattern = regexp.MustCompile(`Rails (\d+\.\d+\.\d+)`)

	// Both rails 2 and rails 3+ scaffolds report the README among the
	// created files; its absence means the generator bailed out.
	generationMarker = regexp.MustCompile(`README`)
)

// provision executes the detect → create → configure → install → verify
// sequence. Steps run strictly in order; the first failure aborts the rest.
func (s *Session) provision(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"detectVersion", s.detectVersion},
		{"createHolderDirectory", s.createHolderDirectory},
		{"generateProject", s.generateProject},
		{"rewriteManifest", s.rewriteManifest},
		{"ensureDatabaseConfig", s.ensureDatabaseConfig},
		{"ensureEnvironmentConfig", s.ensureEnvironmentConfig},
		{"installDependencies", s.installDependencies},
		{"verifyInstalledVersion", s.verifyInstalledVersion},
	}
	for _, step := range steps {
		stepCtx, span := tracing.StartSpan(ctx, "provision."+step.name, "INTERNAL")
		err := step.fn(stepCtx)
		tracing.EndSpan(span, err)
		if err != nil {
			return err
		}
	}
	return nil
}

// detectVersion queries the rails executable resolved by the caller's own
// bundle and records the reported version.
func (s *Session) detectVersion(ctx context.Context) error {
	output, err := s.runner.Run(ctx, "bundle exec rails --version",
		shell.WithDoing("detecting rails version"),
		shell.WithOutputExpectation(versionQueryPattern),
		shell.WithTimeoutMs(s.config.CommandTimeoutMs))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVersionDetection, err)
	}
	match := versionQueryPattern.FindStringSubmatch(output)
	if match == nil {
		return fmt.Errorf("%w: unexpected output %q", ErrVersionDetection, output)
	}
	version, err := ParseVersion(match[1])
	if err != nil {
		return err
	}
	s.version = version
	return nil
}

// createHolderDirectory allocates a uniquely named directory for one target
// project instance. Timestamp, random integer and detected version keep
// concurrent harness processes from colliding.
func (s *Session) createHolderDirectory(ctx context.Context) error {
	name := fmt.Sprintf("rails_%d_%d_%s", clock.Now().UnixNano(), rand.Int31(), s.version)
	holder := filepath.Join(s.containerDir, name)
	if err := s.fs.Create(ctx, holder, file.DefaultDirOsMode, true); err != nil {
		return fmt.Errorf("%w: create holder directory %s: %v", ErrFilesystem, holder, err)
	}
	s.holder = holder
	return nil
}

// generateProject scaffolds the target application inside the holder
// directory using the version-appropriate create command.
func (s *Session) generateProject(ctx context.Context) error {
	command := s.version.Commands().Create(s.config.ProjectName)
	if _, err := s.runner.Run(ctx, command,
		shell.WithWorkdir(s.holder),
		shell.WithDoing("generating rails project "+s.config.ProjectName),
		shell.WithOutputExpectation(generationMarker),
		shell.WithTimeoutMs(s.config.CommandTimeoutMs)); err != nil {
		return fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	s.root = filepath.Join(s.holder, s.config.ProjectName)
	return nil
}

// rewriteManifest overwrites the generated Gemfile so that it references only
// the rails dependency actually resolved by the caller's bundle. Bundler
// refuses to fetch gems absent from the active top-level manifest, so the
// rewrite pins either the exact version or the git locator it came from.
// From rails 3.2 on the scaffold expects a database adapter gem as well.
func (s *Session) rewriteManifest(ctx context.Context) error {
	spec, err := s.gems.Resolve(ctx, "rails")
	if err != nil {
		return fmt.Errorf("%w: resolve rails dependency: %v", ErrConfig, err)
	}
	var manifest strings.Builder
	manifest.WriteString("source 'https://rubygems.org'\n")
	manifest.WriteString(spec.GemfileEntry())
	manifest.WriteString("\n")
	if s.version.AtLeast(3, 2) {
		adapter, err := s.databaseAdapterGem(ctx)
		if err != nil {
			return err
		}
		manifest.WriteString(fmt.Sprintf("gem '%s'\n", adapter))
	}
	target := filepath.Join(s.root, manifestName)
	if err := s.fs.Upload(ctx, target, file.DefaultFileOsMode, strings.NewReader(manifest.String())); err != nil {
		return fmt.Errorf("%w: rewrite %s: %v", ErrFilesystem, target, err)
	}
	return nil
}

// databaseAdapterGem picks the embedded database adapter matching the host
// interpreter; a JVM-hosted ruby cannot load the native sqlite3 extension.
func (s *Session) databaseAdapterGem(ctx context.Context) (string, error) {
	platform, err := s.hostPlatform(ctx)
	if err != nil {
		return "", err
	}
	if strings.Contains(platform, "java") {
		return "activerecord-jdbcsqlite3-adapter", nil
	}
	return "sqlite3", nil
}

// hostPlatform probes RUBY_PLATFORM once per session.
func (s *Session) hostPlatform(ctx context.Context) (string, error) {
	if s.platform != "" {
		return s.platform, nil
	}
	output, err := s.runner.Run(ctx, `ruby -e 'puts RUBY_PLATFORM'`,
		shell.WithDoing("probing ruby platform"),
		shell.WithTimeoutMs(s.config.CommandTimeoutMs))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfig, err)
	}
	s.platform = strings.TrimSpace(output)
	return s.platform, nil
}

// ensureDatabaseConfig duplicates the reference environment's database entry
// under the session's named environment when no entry exists yet. A scaffold
// without the reference entry is broken even when the named environment is the
// reference itself.
func (s *Session) ensureDatabaseConfig(ctx context.Context) error {
	env := s.config.RailsEnv
	target := filepath.Join(s.root, databaseConfigPath)
	data, err := s.fs.DownloadWithURL(ctx, target)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrConfig, target, err)
	}
	root, err := yml.Parse(data)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrConfig, target, err)
	}
	if root.Lookup(env) != nil {
		return nil
	}
	reference := root.Lookup(referenceEnv)
	if reference == nil {
		return fmt.Errorf("%w: %s has no %q entry to duplicate for %q", ErrConfig, target, referenceEnv, env)
	}
	root.Put(env, reference.DeepCopy())
	rewritten, err := root.Marshal()
	if err != nil {
		return fmt.Errorf("%w: rewrite %s: %v", ErrConfig, target, err)
	}
	if err := s.fs.Upload(ctx, target, file.DefaultFileOsMode, strings.NewReader(string(rewritten))); err != nil {
		return fmt.Errorf("%w: rewrite %s: %v", ErrFilesystem, target, err)
	}
	return nil
}

// ensureEnvironmentConfig copies the reference environment's settings file to
// the session's named environment when it has none of its own.
func (s *Session) ensureEnvironmentConfig(ctx context.Context) error {
	env := s.config.RailsEnv
	target := filepath.Join(s.root, environmentsDir, env+".rb")
	if exists, _ := s.fs.Exists(ctx, target); exists {
		return nil
	}
	source := filepath.Join(s.root, environmentsDir, referenceEnv+".rb")
	if exists, _ := s.fs.Exists(ctx, source); !exists {
		return fmt.Errorf("%w: no %s settings file to copy for environment %q", ErrConfig, source, env)
	}
	if err := s.fs.Copy(ctx, source, target); err != nil {
		return fmt.Errorf("%w: copy %s to %s: %v", ErrFilesystem, source, target, err)
	}
	return nil
}

// installDependencies runs the bundler install inside the project root.
func (s *Session) installDependencies(ctx context.Context) error {
	if _, err := s.runner.Run(ctx, "bundle install",
		shell.WithWorkdir(s.root),
		shell.WithDoing("installing project dependencies"),
		shell.WithTimeoutMs(s.config.CommandTimeoutMs)); err != nil {
		return fmt.Errorf("%w: %v", ErrInstall, err)
	}
	return nil
}

// verifyInstalledVersion guards against bundler silently resolving a
// different rails than the one detected on the command line.
func (s *Session) verifyInstalledVersion(ctx context.Context) error {
	output, err := s.RunScriptSource(ctx, "puts Rails::VERSION::STRING\n",
		WithScriptName("report_rails_version"))
	if err != nil {
		return fmt.Errorf("%w: query installed version: %v", ErrVersionMismatch, err)
	}
	installed := lastLine(output)
	if installed != s.version.Text {
		return fmt.Errorf("%w: detected %q but project reports %q", ErrVersionMismatch, s.version.Text, installed)
	}
	return nil
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
