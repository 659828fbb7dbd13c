// Package gemspec resolves the exact dependency specification a gem was
// locked to by the calling project's bundle, so a generated project's
// manifest can reference the identical version or source.
package gemspec
