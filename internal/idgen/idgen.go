package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a new globally unique identifier as string. It is implemented
// as a thin wrapper so tests can stub it.

var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// Short returns the leading segment of a fresh identifier, enough entropy for
// throwaway file names.
func Short() string {
	id := New()
	if i := strings.Index(id, "-"); i > 0 {
		return id[:i]
	}
	return id
}
