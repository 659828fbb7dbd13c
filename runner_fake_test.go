package railbed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/viant/railbed/service/gemspec"
	"github.com/viant/railbed/service/shell"
)

// commandStub maps a command pattern to a canned result and an optional side
// effect simulating what the real command would leave on disk.
type commandStub struct {
	match  *regexp.Regexp
	output string
	err    error
	effect func() error
}

type fakeRunner struct {
	stubs    []commandStub
	commands []string
}

func (r *fakeRunner) Run(_ context.Context, command string, _ ...shell.Option) (string, error) {
	r.commands = append(r.commands, command)
	for _, stub := range r.stubs {
		if stub.match.MatchString(command) {
			if stub.effect != nil {
				if err := stub.effect(); err != nil {
					return "", err
				}
			}
			return stub.output, stub.err
		}
	}
	return "", fmt.Errorf("no stub for command %q", command)
}

func (r *fakeRunner) Close() error { return nil }

type fakeResolver struct {
	spec *gemspec.Spec
	err  error
}

func (r *fakeResolver) Resolve(_ context.Context, _ string) (*gemspec.Spec, error) {
	return r.spec, r.err
}

const testDatabaseYAML = `test:
  adapter: sqlite3
  database: db/test.sqlite3
  pool: 5
`

// scaffoldEffect mimics the rails create command: it locates the freshly
// allocated holder directory and populates a minimal project tree.
func scaffoldEffect(container, project, databaseYAML string) func() error {
	return func() error {
		matches, err := filepath.Glob(filepath.Join(container, "rails_*"))
		if err != nil || len(matches) == 0 {
			return fmt.Errorf("holder directory not found in %s", container)
		}
		root := filepath.Join(matches[0], project)
		if err := os.MkdirAll(filepath.Join(root, "config", "environments"), 0o755); err != nil {
			return err
		}
		if databaseYAML != "" {
			if err := os.WriteFile(filepath.Join(root, "config", "database.yml"), []byte(databaseYAML), 0o644); err != nil {
				return err
			}
		}
		if err := os.WriteFile(filepath.Join(root, "config", "environments", "test.rb"), []byte("config.cache_classes = true\n"), 0o644); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(root, "Gemfile"), []byte("source 'https://rubygems.org'\ngem 'rails'\n"), 0o644)
	}
}

// newProvisionRunner wires the stubs for one happy-path provisioning pass.
func newProvisionRunner(container, project, version, platform string) *fakeRunner {
	return &fakeRunner{stubs: []commandStub{
		{match: regexp.MustCompile(`rails --version`), output: "Rails " + version + "\n"},
		{match: regexp.MustCompile(`rails (new )?` + project), output: "      create  README\n", effect: scaffoldEffect(container, project, testDatabaseYAML)},
		{match: regexp.MustCompile(`puts RUBY_PLATFORM`), output: platform + "\n"},
		{match: regexp.MustCompile(`bundle install`), output: "Bundle complete!\n"},
		{match: regexp.MustCompile(`report_rails_version`), output: version + "\n"},
	}}
}

func newTestSession(t *testing.T, container string, runner shell.Runner, options ...Option) *Session {
	t.Helper()
	base := []Option{
		WithRunner(runner),
		WithGemResolver(&fakeResolver{spec: &gemspec.Spec{Name: "rails", Version: "3.2.13"}}),
	}
	session, err := New(container, append(base, options...)...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}
