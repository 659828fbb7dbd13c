package railbed

import (
	"fmt"
	"strconv"
	"strings"
)

// Version holds a parsed three-part rails version.
type Version struct {
	Major int
	Minor int
	Patch int
	Text  string
}

// ParseVersion parses a dot separated "major.minor.patch" version string.
func ParseVersion(text string) (*Version, error) {
	parts := strings.Split(strings.TrimSpace(text), ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected major.minor.patch, got %q", ErrVersionDetection, text)
	}
	numbers := make([]int, 3)
	for i, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: non numeric component %q in %q", ErrVersionDetection, part, text)
		}
		numbers[i] = value
	}
	return &Version{Major: numbers[0], Minor: numbers[1], Patch: numbers[2], Text: strings.TrimSpace(text)}, nil
}

// MajorMinor returns the version collapsed to a major.minor float, i.e. 3.2
// for "3.2.13".
func (v *Version) MajorMinor() float64 {
	value, _ := strconv.ParseFloat(fmt.Sprintf("%d.%d", v.Major, v.Minor), 64)
	return value
}

// AtLeast reports whether the version is at or above the supplied
// major.minor boundary.
func (v *Version) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

func (v *Version) String() string {
	return v.Text
}

// CommandSet holds the shell command shapes for one major-version bracket.
// All commands run through bundler so the generated project resolves its own
// gem set.
type CommandSet struct {
	create   string
	runner   string
	generate string
}

// Rails renamed its project and generator entry points with the 3.0 release;
// the table carries one row per command vocabulary bracket.
var commandTable = []struct {
	maxMajor int
	commands CommandSet
}{
	{
		maxMajor: 2,
		commands: CommandSet{
			create:   "bundle exec rails %s",
			runner:   "bundle exec ruby script/runner %s",
			generate: "bundle exec script/generate %s",
		},
	},
	{
		maxMajor: int(^uint(0) >> 1),
		commands: CommandSet{
			create:   "bundle exec rails new %s",
			runner:   "bundle exec rails runner %s",
			generate: "bundle exec rails generate %s",
		},
	},
}

// Commands selects the command set for the version's major bracket.
func (v *Version) Commands() CommandSet {
	for _, entry := range commandTable {
		if v.Major <= entry.maxMajor {
			return entry.commands
		}
	}
	return commandTable[len(commandTable)-1].commands
}

// Create returns the "create new project" command for the supplied project name.
func (c CommandSet) Create(projectName string) string {
	return fmt.Sprintf(c.create, projectName)
}

// Runner returns the "run script" command for the supplied script path.
func (c CommandSet) Runner(scriptPath string) string {
	return fmt.Sprintf(c.runner, scriptPath)
}

// Generate returns the "run generator" command for the supplied arguments.
func (c CommandSet) Generate(args string) string {
	return fmt.Sprintf(c.generate, args)
}
