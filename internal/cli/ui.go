// Package cli renders Newton iterations on a terminal: the asynchronous
// spinner and progress bar, the result summary, the REPL and the shell
// completion scripts.
package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/newtoncalc/internal/config"
	"github.com/agbru/newtoncalc/internal/newton"
	"github.com/agbru/newtoncalc/internal/ui"
)

// FormatExecutionDuration shows microseconds below one millisecond,
// milliseconds below one second and the default representation otherwise.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

const (
	// ProgressRefreshRate is the spinner and progress bar refresh period.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Color functions return ANSI escape codes from the current theme.

func ColorReset() string     { return ui.ColorReset() }
func ColorRed() string       { return ui.ColorRed() }
func ColorGreen() string     { return ui.ColorGreen() }
func ColorYellow() string    { return ui.ColorYellow() }
func ColorBlue() string      { return ui.ColorBlue() }
func ColorMagenta() string   { return ui.ColorMagenta() }
func ColorCyan() string      { return ui.ColorCyan() }
func ColorBold() string      { return ui.ColorBold() }
func ColorUnderline() string { return ui.ColorUnderline() }

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a real terminal.
type Spinner interface {
	Start()
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts *spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                     { rs.s.Start() }
func (rs *realSpinner) Stop()                      { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// ProgressState tracks the progress of engines running side by side and
// averages it into a single bar.
type ProgressState struct {
	progresses []float64
	numEngines int
}

// NewProgressState returns a tracker for numEngines engines.
func NewProgressState(numEngines int) *ProgressState {
	return &ProgressState{
		progresses: make([]float64, numEngines),
		numEngines: numEngines,
	}
}

// Update records value for the engine at index. Out-of-range indices are
// ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// CalculateAverage returns the mean progress over all engines.
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numEngines == 0 {
		return 0.0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(ps.numEngines)
}

// progressBar draws a bar of the given length filled to progress, clamped
// to [0, 1].
func progressBar(progress float64, length int) string {
	progress = min(max(progress, 0.0), 1.0)
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

func progressLabel(numEngines int) string {
	if numEngines > 1 {
		return "Avg progress"
	}
	return "Progress"
}

// DisplayProgress renders a spinner with the averaged progress of
// numEngines engines until progressChan is closed, then prints a final
// 100% line and calls wg.Done. It is meant to run in its own goroutine.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan newton.ProgressUpdate, numEngines int, out io.Writer) {
	defer wg.Done()
	if numEngines <= 0 {
		for range progressChan {
		}
		return
	}

	state := NewProgressWithETA(numEngines)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	spinnerStopped := false
	defer func() {
		if !spinnerStopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	label := progressLabel(numEngines)
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				spinnerStopped = true
				fmt.Fprintf(out, "%s: %6.2f%% [%s] ETA: %s\n", label, 100.0, progressBar(1.0, ProgressBarWidth), "< 1s")
				return
			}
			state.UpdateWithETA(update.EngineIndex, update.Value)
		case <-ticker.C:
			avg := state.CalculateAverage()
			s.UpdateSuffix(fmt.Sprintf(" %s: %s", label, FormatProgressBarWithETA(avg, state.GetETA(), ProgressBarWidth)))
		}
	}
}

// rootIndex returns the position of root in roots, or -1.
func rootIndex(root complex128, roots []complex128) int {
	return slices.Index(roots, root)
}

// FormatRoot renders the root reached by res in its basin color, or
// "none" when the trajectory did not converge.
func FormatRoot(res newton.Result, roots []complex128) string {
	if !res.Converged {
		return ColorRed() + "none" + ColorReset()
	}
	return ui.RootColor(rootIndex(res.Root, roots)) + config.FormatComplex(res.Root) + ColorReset()
}

// DisplayResult prints the boundary record of res (root and niter), its
// status and the duration. In verbose mode it adds the index of the root
// in the root list and the number of steps actually taken.
func DisplayResult(res newton.Result, p newton.Problem, duration time.Duration, verbose bool, out io.Writer) {
	end := res.IterEnd(p.MaxIter)

	fmt.Fprintf(out, "\n%s--- Result ---%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(out, "Root       : %s\n", FormatRoot(res, p.Roots))
	fmt.Fprintf(out, "Iterations : %s%d%s\n", ColorCyan(), end.Niter, ColorReset())

	statusColor := ColorGreen()
	if !res.Converged {
		statusColor = ColorYellow()
	}
	fmt.Fprintf(out, "Status     : %s%s%s\n", statusColor, end.Status(), ColorReset())

	durationStr := FormatExecutionDuration(duration)
	if duration == 0 {
		durationStr = "< 1µs"
	}
	fmt.Fprintf(out, "Time       : %s%s%s\n", ColorGreen(), durationStr, ColorReset())

	if !verbose {
		return
	}
	if res.Converged {
		fmt.Fprintf(out, "Root index : %s%d%s of %d\n", ColorMagenta(), rootIndex(res.Root, p.Roots), ColorReset(), len(p.Roots))
	}
	fmt.Fprintf(out, "Steps taken: %s%d%s (budget %d)\n", ColorMagenta(), res.Iterations, ColorReset(), p.MaxIter)
}
