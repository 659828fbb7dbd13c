// Package ambient captures and restores process-wide state (working
// directory, environment variables) around a protected region. It lives under
// internal because the capture/restore pair is only safe while a single
// session mutates that state.
package ambient

import "os"

// State holds the captured working directory and environment variable values.
type State struct {
	workdir string
	vars    []variable
}

type variable struct {
	name    string
	value   string
	present bool
}

// Capture records the current working directory and the listed environment
// variables, keeping the present/absent distinction so Restore can unset
// variables that did not exist.
func Capture(names ...string) (*State, error) {
	workdir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	state := &State{workdir: workdir}
	for _, name := range names {
		value, present := os.LookupEnv(name)
		state.vars = append(state.vars, variable{name: name, value: value, present: present})
	}
	return state, nil
}

// Workdir returns the captured working directory.
func (s *State) Workdir() string {
	return s.workdir
}

// Restore puts the working directory and every captured variable back to its
// captured value. It keeps going past individual failures and returns the
// first error; restoring twice is harmless.
func (s *State) Restore() error {
	var first error
	if err := os.Chdir(s.workdir); err != nil {
		first = err
	}
	for _, v := range s.vars {
		var err error
		if v.present {
			err = os.Setenv(v.name, v.value)
		} else {
			err = os.Unsetenv(v.name)
		}
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}
