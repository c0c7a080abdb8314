// Package testutil holds helpers shared by the CLI-facing tests.
package testutil

import (
	"regexp"
	"strings"
	"testing"
)

// CSI sequences: ESC [ parameters final-letter.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes removes terminal color codes from s.
func StripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// AssertContainsAll fails t for every fragment missing from output once
// colors are stripped.
func AssertContainsAll(t testing.TB, output string, fragments ...string) {
	t.Helper()
	plain := StripAnsiCodes(output)
	for _, f := range fragments {
		if !strings.Contains(plain, f) {
			t.Errorf("output missing %q:\n%s", f, plain)
		}
	}
}
