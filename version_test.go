package railbed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expect      *Version
		expectError bool
	}{
		{name: "rails 2", input: "2.3.8", expect: &Version{Major: 2, Minor: 3, Patch: 8, Text: "2.3.8"}},
		{name: "rails 3", input: "3.2.13", expect: &Version{Major: 3, Minor: 2, Patch: 13, Text: "3.2.13"}},
		{name: "surrounding whitespace", input: " 4.0.0\n", expect: &Version{Major: 4, Minor: 0, Patch: 0, Text: "4.0.0"}},
		{name: "two components", input: "3.2", expectError: true},
		{name: "non numeric", input: "3.x.1", expectError: true},
		{name: "empty", input: "", expectError: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			version, err := ParseVersion(testCase.input)
			if testCase.expectError {
				assert.True(t, errors.Is(err, ErrVersionDetection), "expected ErrVersionDetection, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, version)
		})
	}
}

func TestVersion_MajorMinor(t *testing.T) {
	version, err := ParseVersion("4.0.0")
	require.NoError(t, err)
	assert.Equal(t, 4.0, version.MajorMinor())

	version, err = ParseVersion("3.2.13")
	require.NoError(t, err)
	assert.Equal(t, 3.2, version.MajorMinor())
}

func TestVersion_AtLeast(t *testing.T) {
	testCases := []struct {
		version string
		expect  bool
	}{
		{version: "3.2.0", expect: true},
		{version: "3.2.13", expect: true},
		{version: "4.0.0", expect: true},
		{version: "3.1.9", expect: false},
		{version: "2.3.8", expect: false},
	}
	for _, testCase := range testCases {
		version, err := ParseVersion(testCase.version)
		require.NoError(t, err)
		assert.Equal(t, testCase.expect, version.AtLeast(3, 2), "version %s", testCase.version)
	}
}

func TestVersion_CommandDispatch(t *testing.T) {
	testCases := []struct {
		version        string
		expectCreate   string
		expectRunner   string
		expectGenerate string
	}{
		{
			version:        "2.3.8",
			expectCreate:   "bundle exec rails demo",
			expectRunner:   "bundle exec ruby script/runner check.rb",
			expectGenerate: "bundle exec script/generate model User",
		},
		{
			version:        "3.2.13",
			expectCreate:   "bundle exec rails new demo",
			expectRunner:   "bundle exec rails runner check.rb",
			expectGenerate: "bundle exec rails generate model User",
		},
		{
			version:        "4.0.0",
			expectCreate:   "bundle exec rails new demo",
			expectRunner:   "bundle exec rails runner check.rb",
			expectGenerate: "bundle exec rails generate model User",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.version, func(t *testing.T) {
			version, err := ParseVersion(testCase.version)
			require.NoError(t, err)
			commands := version.Commands()
			assert.Equal(t, testCase.expectCreate, commands.Create("demo"))
			assert.Equal(t, testCase.expectRunner, commands.Runner("check.rb"))
			assert.Equal(t, testCase.expectGenerate, commands.Generate("model User"))
		})
	}
}
