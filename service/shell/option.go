package shell

import "regexp"

// Option customises a single command invocation.
type Option func(o *runOptions)

type runOptions struct {
	workdir   string
	doing     string
	expect    *regexp.Regexp
	timeoutMs int
}

func newRunOptions(options []Option) *runOptions {
	o := &runOptions{doing: "running a command"}
	for _, option := range options {
		option(o)
	}
	return o
}

// WithWorkdir runs the command from the supplied directory.
func WithWorkdir(workdir string) Option {
	return func(o *runOptions) { o.workdir = workdir }
}

// WithDoing describes the operation for failure messages, e.g. "installing
// project dependencies".
func WithDoing(description string) Option {
	return func(o *runOptions) {
		if description != "" {
			o.doing = description
		}
	}
}

// WithOutputExpectation fails the invocation when the combined output does
// not match pattern.
func WithOutputExpectation(pattern *regexp.Regexp) Option {
	return func(o *runOptions) { o.expect = pattern }
}

// WithTimeoutMs bounds the command execution time.
func WithTimeoutMs(timeoutMs int) Option {
	return func(o *runOptions) { o.timeoutMs = timeoutMs }
}
