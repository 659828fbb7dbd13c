package gemspec

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

const gemLockfile = `GEM
  remote: https://rubygems.org/
  specs:
    actionmailer (3.2.13)
      actionpack (= 3.2.13)
    rack (1.4.5)
    rails (3.2.13)
      actionmailer (= 3.2.13)
      railties (= 3.2.13)

PLATFORMS
  ruby

DEPENDENCIES
  rails (= 3.2.13)
`

const gitLockfile = `GIT
  remote: https://github.com/rails/rails.git
  revision: f9dd2cfa2b0a6fa7c2d6eccf259733f5bd0a84b2
  specs:
    rails (4.0.0.beta1)
      actionmailer (= 4.0.0.beta1)

GEM
  remote: https://rubygems.org/
  specs:
    rack (1.5.2)

DEPENDENCIES
  rails!
`

func writeLockfile(t *testing.T, content string) string {
	t.Helper()
	location := filepath.Join(t.TempDir(), "Gemfile.lock")
	require.NoError(t, os.WriteFile(location, []byte(content), 0o644))
	return location
}

func TestService_ResolvePinnedGem(t *testing.T) {
	service := New(afs.New(), WithLockfile(writeLockfile(t, gemLockfile)))

	spec, err := service.Resolve(context.Background(), "rails")
	require.NoError(t, err)
	assert.Equal(t, &Spec{Name: "rails", Version: "3.2.13"}, spec)
	assert.Equal(t, "gem 'rails', '3.2.13'", spec.GemfileEntry())
}

func TestService_ResolveGitSourcedGem(t *testing.T) {
	service := New(afs.New(), WithLockfile(writeLockfile(t, gitLockfile)))

	spec, err := service.Resolve(context.Background(), "rails")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/rails/rails.git", spec.GitRemote)
	assert.Equal(t, "f9dd2cfa2b0a6fa7c2d6eccf259733f5bd0a84b2", spec.GitRevision)
	assert.Equal(t,
		"gem 'rails', :git => 'https://github.com/rails/rails.git', :ref => 'f9dd2cfa2b0a6fa7c2d6eccf259733f5bd0a84b2'",
		spec.GemfileEntry())
}

func TestService_TransitiveDependenciesIgnored(t *testing.T) {
	service := New(afs.New(), WithLockfile(writeLockfile(t, gemLockfile)))

	// actionpack appears only as a transitive dependency line
	_, err := service.Resolve(context.Background(), "actionpack")
	assert.True(t, errors.Is(err, ErrNotFound), "expected ErrNotFound, got %v", err)
}

func TestService_ResolveMissingGem(t *testing.T) {
	service := New(afs.New(), WithLockfile(writeLockfile(t, gemLockfile)))

	_, err := service.Resolve(context.Background(), "nokogiri")
	assert.True(t, errors.Is(err, ErrNotFound), "expected ErrNotFound, got %v", err)
}

func TestService_LockfileFromBundleGemfile(t *testing.T) {
	dir := t.TempDir()
	gemfile := filepath.Join(dir, "Gemfile")
	t.Setenv("BUNDLE_GEMFILE", gemfile)
	require.NoError(t, os.WriteFile(gemfile+".lock", []byte(gemLockfile), 0o644))

	service := New(afs.New())
	spec, err := service.Resolve(context.Background(), "rails")
	require.NoError(t, err)
	assert.Equal(t, "3.2.13", spec.Version)
}
