package shell

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/afs/url"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	rssh "github.com/viant/gosh/runner/ssh"
	"github.com/viant/scy/cred/secret"
	"golang.org/x/crypto/ssh"
)

// Runner abstracts command execution so sessions can be driven by a scripted
// fake in tests.
type Runner interface {
	Run(ctx context.Context, command string, options ...Option) (string, error)
	Close() error
}

// Bundler and rubygems leak these into child processes; a nested bundler
// would otherwise resolve against the harness's own gem set instead of the
// generated project's.
var strippedVariables = []string{
	"BUNDLE_GEMFILE",
	"BUNDLE_BIN_PATH",
	"BUNDLE_PATH",
	"RUBYOPT",
	"RUBYLIB",
	"GEM_HOME",
	"GEM_PATH",
}

// Service executes commands through a cached gosh session per host.
type Service struct {
	host        string
	credentials string
	env         map[string]string
	sessions    map[string]*sessionInfo
	mux         sync.Mutex
}

type sessionInfo struct {
	service *gosh.Service
}

// ServiceOption customises the service at construction time.
type ServiceOption func(s *Service)

// WithHost sets the target host URL; defaults to the local shell.
func WithHost(hostURL string) ServiceOption {
	return func(s *Service) { s.host = hostURL }
}

// WithCredentials names the scy secret resource used for SSH hosts.
func WithCredentials(credentials string) ServiceOption {
	return func(s *Service) { s.credentials = credentials }
}

// WithEnvironment sets extra environment variables for every command.
func WithEnvironment(env map[string]string) ServiceOption {
	return func(s *Service) { s.env = env }
}

// New creates a shell execution service.
func New(options ...ServiceOption) *Service {
	s := &Service{
		host:     "bash://localhost/",
		sessions: make(map[string]*sessionInfo),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Run executes a single command and returns its combined output. Non-zero
// exit status or an unmet output expectation yield an error naming what was
// being attempted.
func (s *Service) Run(ctx context.Context, command string, options ...Option) (string, error) {
	opts := newRunOptions(options)
	session, err := s.getSession(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get session while %v: %w", opts.doing, err)
	}
	timeoutMs := opts.timeoutMs
	if timeoutMs == 0 {
		timeoutMs = 60000
	}
	output, status, err := session.service.Run(ctx, composeCommand(command, opts.workdir), runner.WithTimeout(timeoutMs))
	return validateOutput(opts, command, output, status, err)
}

// composeCommand prefixes the working directory change when one is requested.
func composeCommand(command, workdir string) string {
	if workdir == "" {
		return command
	}
	return fmt.Sprintf("cd %v && %v", workdir, command)
}

// validateOutput applies the invocation's output contract.
func validateOutput(opts *runOptions, command, output string, status int, err error) (string, error) {
	if err != nil {
		return "", fmt.Errorf("failed while %v: %v: %w", opts.doing, command, err)
	}
	if status != 0 {
		return "", fmt.Errorf("failed while %v: %v exited with status %v, output: %v", opts.doing, command, status, strings.TrimSpace(output))
	}
	if opts.expect != nil && !opts.expect.MatchString(output) {
		return "", fmt.Errorf("failed while %v: output of %v did not match %v, output: %v", opts.doing, command, opts.expect, strings.TrimSpace(output))
	}
	return output, nil
}

// getSession retrieves an existing session for the configured host or creates
// a new one with the dependency-manager variables stripped.
func (s *Service) getSession(ctx context.Context) (*sessionInfo, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if session, ok := s.sessions[s.host]; ok {
		return session, nil
	}

	var service *gosh.Service
	var err error

	envOptions := []runner.Option{}
	if len(s.env) > 0 {
		envOptions = append(envOptions, runner.WithEnvironment(s.env))
	}
	if url.Host(s.host) == "localhost" {
		service, err = gosh.New(ctx, local.New(envOptions...))
	} else {
		config, configErr := s.sshConfig(ctx)
		if configErr != nil {
			return nil, fmt.Errorf("failed to get SSH config: %w", configErr)
		}
		sshHost := url.Host(s.host)
		if !strings.Contains(sshHost, ":") {
			sshHost += ":22"
		}
		service, err = gosh.New(ctx, rssh.New(sshHost, config, envOptions...))
	}
	if err != nil {
		return nil, err
	}
	if _, _, err = service.Run(ctx, "unset "+strings.Join(strippedVariables, " ")); err != nil {
		_ = service.Close()
		return nil, fmt.Errorf("failed to sanitize session environment: %w", err)
	}
	session := &sessionInfo{service: service}
	s.sessions[s.host] = session
	return session, nil
}

// sshConfig builds an SSH client config from the configured scy credentials.
func (s *Service) sshConfig(ctx context.Context) (*ssh.ClientConfig, error) {
	credentials := s.credentials
	if credentials == "" {
		credentials = "localhost"
	}
	secrets := secret.New()
	generic, err := secrets.GetCredentials(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return generic.SSH.Config(ctx)
}

// Close releases all sessions held by this service.
func (s *Service) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	var errs []string
	for id, session := range s.sessions {
		if err := session.service.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("failed to close session %s: %v", id, err))
		}
	}
	s.sessions = make(map[string]*sessionInfo)
	if len(errs) > 0 {
		return fmt.Errorf("errors closing sessions: %s", strings.Join(errs, "; "))
	}
	return nil
}
