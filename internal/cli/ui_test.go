package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/newtoncalc/internal/newton"
	"github.com/agbru/newtoncalc/internal/testutil"
	"github.com/agbru/newtoncalc/internal/ui"
)

// MockSpinner records the calls DisplayProgress makes.
type MockSpinner struct {
	mu      sync.Mutex
	started bool
	stopped bool
	suffix  string
}

func (m *MockSpinner) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
}

func (m *MockSpinner) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suffix = suffix
}

var (
	omega    = complex(-0.5, 0.8660254037844386)
	omegaBar = complex(-0.5, -0.8660254037844386)
	cubeRoot = []complex128{1, omega, omegaBar}
)

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{500 * time.Nanosecond, "0µs"},
		{10 * time.Microsecond, "10µs"},
		{10 * time.Millisecond, "10ms"},
		{2 * time.Second, "2s"},
	}

	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.d); got != tt.expected {
			t.Errorf("FormatExecutionDuration(%v) = %s; want %s", tt.d, got, tt.expected)
		}
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		progress float64
		length   int
		want     string
	}{
		{0.0, 10, "░░░░░░░░░░"},
		{0.5, 10, "█████░░░░░"},
		{1.0, 10, "██████████"},
		{1.2, 10, "██████████"},
		{-0.1, 10, "░░░░░░░░░░"},
	}

	for _, tt := range tests {
		if got := progressBar(tt.progress, tt.length); got != tt.want {
			t.Errorf("progressBar(%f, %d) = %s; want %s", tt.progress, tt.length, got, tt.want)
		}
	}
}

func TestProgressState(t *testing.T) {
	t.Parallel()

	ps := NewProgressState(2)
	ps.Update(0, 0.5)
	ps.Update(1, 1.0)
	ps.Update(5, 1.0) // ignored
	ps.Update(-1, 1.0)
	if got := ps.CalculateAverage(); got != 0.75 {
		t.Errorf("CalculateAverage() = %f, want 0.75", got)
	}

	if got := NewProgressState(0).CalculateAverage(); got != 0 {
		t.Errorf("empty average = %f, want 0", got)
	}
}

func TestDisplayProgress(t *testing.T) {
	mock := &MockSpinner{}
	original := newSpinner
	newSpinner = func(...spinner.Option) Spinner { return mock }
	defer func() { newSpinner = original }()

	var buf bytes.Buffer
	progressChan := make(chan newton.ProgressUpdate, 4)
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, progressChan, 2, &buf)

	progressChan <- newton.ProgressUpdate{EngineIndex: 0, Value: 0.5}
	progressChan <- newton.ProgressUpdate{EngineIndex: 1, Value: 1.0}
	close(progressChan)
	wg.Wait()

	if !mock.started || !mock.stopped {
		t.Errorf("spinner should be started and stopped: %+v", mock)
	}
	got := testutil.StripAnsiCodes(buf.String())
	if !strings.Contains(got, "Avg progress: 100.00%") {
		t.Errorf("final line missing, got %q", got)
	}
}

func TestDisplayProgress_NoEngines(t *testing.T) {
	t.Parallel()

	progressChan := make(chan newton.ProgressUpdate, 2)
	progressChan <- newton.ProgressUpdate{Value: 1}
	close(progressChan)

	var buf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(1)
	DisplayProgress(&wg, progressChan, 0, &buf)
	wg.Wait()
	if buf.Len() != 0 {
		t.Errorf("no output expected, got %q", buf.String())
	}
}

func TestDisplayResult(t *testing.T) {
	t.Parallel()

	p := newton.Problem{MaxIter: 30, Z0: 0.9 + 0.1i, Roots: cubeRoot}
	tests := []struct {
		name     string
		res      newton.Result
		duration time.Duration
		verbose  bool
		want     string
	}{
		{
			name:     "converged",
			res:      newton.Result{Converged: true, Root: 1, Iterations: 5, Outcome: newton.OutcomeConverged},
			duration: time.Millisecond,
			want:     "\n--- Result ---\nRoot       : 1+0i\nIterations : 5\nStatus     : converged\nTime       : 1ms\n",
		},
		{
			name:     "pole hit reports the budget",
			res:      newton.Result{Iterations: 12, Outcome: newton.OutcomePoleProximity},
			duration: 0,
			verbose:  true,
			want: "\n--- Result ---\nRoot       : none\nIterations : 30\nStatus     : not_converged\nTime       : < 1µs\n" +
				"Steps taken: 12 (budget 30)\n",
		},
		{
			name:     "verbose converged",
			res:      newton.Result{Converged: true, Root: omegaBar, Iterations: 4, Outcome: newton.OutcomeConverged},
			duration: 2 * time.Second,
			verbose:  true,
			want: "\n--- Result ---\nRoot       : -0.5-0.8660254037844386i\nIterations : 4\nStatus     : converged\nTime       : 2s\n" +
				"Root index : 2 of 3\nSteps taken: 4 (budget 30)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			DisplayResult(tt.res, p, tt.duration, tt.verbose, &buf)
			if got := testutil.StripAnsiCodes(buf.String()); got != tt.want {
				t.Errorf("DisplayResult mismatch.\nWant:\n%q\nGot:\n%q", tt.want, got)
			}
		})
	}
}

func TestFormatRootUsesBasinColor(t *testing.T) {
	originalTheme := ui.GetCurrentTheme()
	defer ui.SetCurrentTheme(originalTheme)
	ui.SetCurrentTheme(ui.DarkTheme)

	res := newton.Result{Converged: true, Root: omega}
	got := FormatRoot(res, cubeRoot)
	if !strings.HasPrefix(got, ui.RootColor(1)) {
		t.Errorf("FormatRoot should start with the color of root 1, got %q", got)
	}
	if testutil.StripAnsiCodes(got) != "-0.5+0.8660254037844386i" {
		t.Errorf("FormatRoot text = %q", testutil.StripAnsiCodes(got))
	}

	none := FormatRoot(newton.Result{}, cubeRoot)
	if !strings.HasPrefix(none, ui.DarkTheme.Error) {
		t.Errorf("non-converged root should use the error color, got %q", none)
	}
}
