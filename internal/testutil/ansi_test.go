package testutil

import "testing"

func TestStripAnsiCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "z0 = 1+0.5i", "z0 = 1+0.5i"},
		{"simple color", "\x1b[31mpole_proximity\x1b[0m", "pole_proximity"},
		{"bold and color", "\x1b[1;32mconverged\x1b[0m", "converged"},
		{"several codes", "Root \x1b[33m1+0i\x1b[0m in \x1b[34m5\x1b[0m steps", "Root 1+0i in 5 steps"},
		{"underline header", "\x1b[4mEngine\x1b[0m\t\x1b[4mNiter\x1b[0m", "Engine\tNiter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := StripAnsiCodes(tt.input); got != tt.expected {
				t.Errorf("StripAnsiCodes(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAssertContainsAll(t *testing.T) {
	t.Parallel()
	AssertContainsAll(t, "\x1b[32mStatus     : converged\x1b[0m", "Status", "converged")

	rec := &recorder{TB: t}
	AssertContainsAll(rec, "Status: not_converged", "Root", "Status")
	if rec.failures != 1 {
		t.Errorf("failures = %d, want 1", rec.failures)
	}
}

type recorder struct {
	testing.TB
	failures int
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(string, ...any) { r.failures++ }
