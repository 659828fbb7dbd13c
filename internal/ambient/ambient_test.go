package ambient

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RestoresWorkdirAndVariables(t *testing.T) {
	original, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(original) })
	t.Setenv("RAILBED_AMBIENT_SET", "before")
	require.NoError(t, os.Unsetenv("RAILBED_AMBIENT_UNSET"))

	state, err := Capture("RAILBED_AMBIENT_SET", "RAILBED_AMBIENT_UNSET")
	require.NoError(t, err)
	assert.Equal(t, original, state.Workdir())

	require.NoError(t, os.Chdir(t.TempDir()))
	require.NoError(t, os.Setenv("RAILBED_AMBIENT_SET", "mutated"))
	require.NoError(t, os.Setenv("RAILBED_AMBIENT_UNSET", "appeared"))

	require.NoError(t, state.Restore())

	workdir, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, original, workdir)
	assert.Equal(t, "before", os.Getenv("RAILBED_AMBIENT_SET"))
	_, present := os.LookupEnv("RAILBED_AMBIENT_UNSET")
	assert.False(t, present)
}

func TestState_RestoreIsIdempotent(t *testing.T) {
	original, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(original) })
	t.Setenv("RAILBED_AMBIENT_SET", "before")

	state, err := Capture("RAILBED_AMBIENT_SET")
	require.NoError(t, err)

	require.NoError(t, os.Chdir(t.TempDir()))
	require.NoError(t, state.Restore())
	require.NoError(t, state.Restore())

	workdir, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, original, workdir)
	assert.Equal(t, "before", os.Getenv("RAILBED_AMBIENT_SET"))
}
