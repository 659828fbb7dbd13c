// Package shell is the execution boundary for external commands. Commands run
// through a cached gosh session per host with dependency-manager environment
// variables stripped, and their combined output is validated against the
// caller's expectations before being returned.
package shell
