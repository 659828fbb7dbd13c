package railbed

import "errors"

var (
	// ErrInvalidEnvironment is returned by New when the rails environment name
	// is empty after trimming.
	ErrInvalidEnvironment = errors.New("railbed: invalid rails environment")

	// ErrNotRunning is returned by operations that require an active session.
	ErrNotRunning = errors.New("railbed: session is not running")

	// ErrSessionRunning is returned by Run when invoked on a session that is
	// already inside an active Run call.
	ErrSessionRunning = errors.New("railbed: session already running")

	// ErrSessionConsumed is returned by Run on a session whose single Run has
	// already completed. Sessions are single-use.
	ErrSessionConsumed = errors.New("railbed: session already used")

	// ErrVersionDetection indicates the rails version query produced
	// unparsable output.
	ErrVersionDetection = errors.New("railbed: unable to detect rails version")

	// ErrVersionMismatch indicates the installed project reported a different
	// rails version than the one detected on the command line.
	ErrVersionMismatch = errors.New("railbed: installed rails version mismatch")

	// ErrFilesystem indicates a directory or file operation failed.
	ErrFilesystem = errors.New("railbed: filesystem operation failed")

	// ErrGeneration indicates the project scaffold command did not produce the
	// expected output.
	ErrGeneration = errors.New("railbed: project generation failed")

	// ErrInstall indicates the dependency installer exited with a non-zero
	// status.
	ErrInstall = errors.New("railbed: dependency installation failed")

	// ErrConfig indicates a project configuration file was missing a required
	// entry or could not be rewritten.
	ErrConfig = errors.New("railbed: project configuration failed")
)
