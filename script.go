package railbed

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/afs/file"
	"github.com/viant/railbed/internal/idgen"
	"github.com/viant/railbed/service/shell"
	"github.com/viant/railbed/tracing"
)

// ScriptOption customises RunScriptSource.
type ScriptOption func(o *scriptOptions)

type scriptOptions struct {
	name  string
	shell []shell.Option
}

// WithScriptName names the temporary script file written for inline sources;
// the .rb extension is appended when missing.
func WithScriptName(name string) ScriptOption {
	return func(o *scriptOptions) { o.name = name }
}

// WithShellOptions forwards options to the underlying shell invocation.
func WithShellOptions(options ...shell.Option) ScriptOption {
	return func(o *scriptOptions) { o.shell = append(o.shell, options...) }
}

// RunScript executes the script at scriptPath inside the project root using
// the version-appropriate runner command and returns the combined output.
// Requires an active Run call.
func (s *Session) RunScript(ctx context.Context, scriptPath string, args []string, options ...shell.Option) (string, error) {
	if err := s.mustBeRunning(); err != nil {
		return "", err
	}
	command := s.version.Commands().Runner(scriptPath)
	if len(args) > 0 {
		command += " " + strings.Join(args, " ")
	}
	runOptions := append([]shell.Option{
		shell.WithWorkdir(s.root),
		shell.WithDoing("running script " + scriptPath),
		shell.WithTimeoutMs(s.config.CommandTimeoutMs),
	}, options...)

	ctx, span := tracing.StartSpan(ctx, "script.run", "CLIENT")
	span.WithAttributes(map[string]string{"script": scriptPath})
	output, err := s.runner.Run(ctx, command, runOptions...)
	tracing.EndSpan(span, err)
	return output, err
}

// RunScriptSource writes contents to a .rb file in the project root and runs
// it via RunScript. Script files are left in place; whole-tree deletion
// collects them.
func (s *Session) RunScriptSource(ctx context.Context, contents string, options ...ScriptOption) (string, error) {
	if err := s.mustBeRunning(); err != nil {
		return "", err
	}
	o := &scriptOptions{}
	for _, option := range options {
		option(o)
	}
	name := o.name
	if name == "" {
		name = "script_" + idgen.Short()
	}
	if !strings.HasSuffix(name, ".rb") {
		name += ".rb"
	}
	target := filepath.Join(s.root, name)
	if err := s.fs.Upload(ctx, target, file.DefaultFileOsMode, strings.NewReader(contents)); err != nil {
		return "", fmt.Errorf("%w: write script %s: %v", ErrFilesystem, target, err)
	}
	return s.RunScript(ctx, name, nil, o.shell...)
}

// RunGenerator executes the version-appropriate generator command with the
// supplied arguments and returns its raw output without validation.
// Requires an active Run call.
func (s *Session) RunGenerator(ctx context.Context, args ...string) (string, error) {
	if err := s.mustBeRunning(); err != nil {
		return "", err
	}
	command := s.version.Commands().Generate(strings.Join(args, " "))
	ctx, span := tracing.StartSpan(ctx, "script.generate", "CLIENT")
	output, err := s.runner.Run(ctx, command,
		shell.WithWorkdir(s.root),
		shell.WithDoing("running generator "+strings.Join(args, " ")),
		shell.WithTimeoutMs(s.config.CommandTimeoutMs))
	tracing.EndSpan(span, err)
	return output, err
}
