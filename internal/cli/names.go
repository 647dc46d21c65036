package cli

import (
	"errors"
	"regexp"
	"strings"
)

const defaultFunctionPath = "sample/hello"

var functionPathPattern = regexp.MustCompile(`^[a-zA-Z]+/[a-zA-Z]+$`)

var errInvalidFunctionPath = errors.New(`function name must be in the format "package/name" using letters only`)

// validateFunctionPath checks a "package/name" identifier.
func validateFunctionPath(s string) error {
	if !functionPathPattern.MatchString(s) {
		return errInvalidFunctionPath
	}
	return nil
}

// splitFunctionPath splits a validated "package/name" identifier.
func splitFunctionPath(s string) (pkg, name string) {
	pkg, name, _ = strings.Cut(s, "/")
	return pkg, name
}
