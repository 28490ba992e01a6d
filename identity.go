package stagehand

import (
	"fmt"
	"path/filepath"
	"strings"
)

// IdentityFromPath derives the action and phase names from a stub's own
// location: the action is the name of the directory containing the stub and
// the phase is the stub's file name with its extension stripped.
//
// A stub installed as actions/deploy/setup.sh therefore identifies itself as
// action "deploy", phase "setup". Both tokens must be non-empty and safe to
// embed in filesystem paths.
func IdentityFromPath(path string) (action, phase string, err error) {
	cleaned := filepath.Clean(path)

	file := filepath.Base(cleaned)
	phase = strings.TrimSuffix(file, filepath.Ext(file))
	action = filepath.Base(filepath.Dir(cleaned))

	if !safeToken(action) {
		return "", "", fmt.Errorf("cannot derive an action name from %q", path)
	}

	if !safeToken(phase) {
		return "", "", fmt.Errorf("cannot derive a phase name from %q", path)
	}

	return action, phase, nil
}

// safeToken reports whether a derived name is usable as a plain path
// component.
func safeToken(token string) bool {
	switch token {
	case "", ".", "..":
		return false
	}

	return !strings.ContainsAny(token, `/\`)
}
