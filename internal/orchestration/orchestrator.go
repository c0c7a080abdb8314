// Package orchestration runs the selected Newton engines side by side on the
// same problem and reports whether they agree.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/newtoncalc/internal/cli"
	"github.com/agbru/newtoncalc/internal/config"
	apperrors "github.com/agbru/newtoncalc/internal/errors"
	"github.com/agbru/newtoncalc/internal/newton"
	"github.com/agbru/newtoncalc/internal/ui"
)

// IterationResult is the outcome of one engine on the shared problem.
type IterationResult struct {
	// Name is the engine's display name.
	Name string
	// Result is meaningful only when Err is nil.
	Result newton.Result
	// Duration is the wall time of the call.
	Duration time.Duration
	// Err is an invalid-problem error or the context error when the run
	// was abandoned.
	Err error
}

// ProgressBufferMultiplier sizes the progress channel per engine so slow
// rendering does not stall the engines.
const ProgressBufferMultiplier = 5

// ExecuteIterations runs every engine concurrently on p and returns their
// results in engine order. Progress is rendered to out and also handed to
// observers.
//
// An engine call is not interruptible; when ctx ends first, the engine's
// slot records ctx.Err() and the call finishes in the background.
func ExecuteIterations(ctx context.Context, engines []newton.Engine, p newton.Problem, out io.Writer, observers ...newton.ProgressObserver) []IterationResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]IterationResult, len(engines))
	progressChan := make(chan newton.ProgressUpdate, len(engines)*ProgressBufferMultiplier)
	opts := newton.Options{Observers: observers}

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(engines), out)

	// Abandoned calls may still report progress after progressChan is
	// closed, so each engine reports to a private sink that is forwarded.
	for i, engine := range engines {
		idx := i
		g.Go(func() error {
			startTime := time.Now()
			done := make(chan IterationResult, 1)
			sink := make(chan newton.ProgressUpdate, ProgressBufferMultiplier)

			go func() {
				res, err := engine.Iterate(ctx, sink, idx, p, opts)
				close(sink)
				done <- IterationResult{Name: engine.Name(), Result: res, Duration: time.Since(startTime), Err: err}
			}()

			for {
				select {
				case update, ok := <-sink:
					if ok {
						progressChan <- update
						continue
					}
					sink = nil
				case r := <-done:
					results[idx] = r
					return nil
				case <-ctx.Done():
					results[idx] = IterationResult{Name: engine.Name(), Duration: time.Since(startTime), Err: ctx.Err()}
					if sink != nil {
						go drain(sink)
					}
					return nil
				}
			}
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

func drain(ch <-chan newton.ProgressUpdate) {
	for range ch {
	}
}

// classification is what engines must agree on: the root reached, or the
// absence of one.
func classification(res newton.Result) string {
	if !res.Converged {
		return "none"
	}
	return config.FormatComplex(res.Root)
}

// AnalyzeComparisonResults prints a summary table, checks that every
// successful engine reached the same root (or none) and prints the fastest
// result. It returns the process exit code: ExitErrorMismatch when engines
// disagree, the code of the first error when all failed.
func AnalyzeComparisonResults(results []IterationResult, cfg config.AppConfig, out io.Writer) int {
	p := cfg.ToProblem()
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var first *IterationResult
	var firstError error
	successCount := 0

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sEngine%s\t%sDuration%s\t%sRoot%s\t%sNiter%s\t%sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset())

	for i := range results {
		res := &results[i]
		root, niter := "-", "-"
		var status string
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
			if firstError == nil {
				firstError = res.Err
			}
		} else {
			end := res.Result.IterEnd(p.MaxIter)
			status = fmt.Sprintf("%s✅ %s%s", ui.ColorGreen(), end.Status(), ui.ColorReset())
			root = classification(res.Result)
			niter = fmt.Sprint(end.Niter)
			successCount++
			if first == nil {
				first = res
			}
		}
		duration := cli.FormatExecutionDuration(res.Duration)
		if res.Duration == 0 {
			duration = "< 1µs"
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s\t%s\t%s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(),
			ui.ColorYellow(), duration, ui.ColorReset(),
			root, niter, status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No engine could complete the iteration.\n")
		return apperrors.HandleIterationError(firstError, 0, out, cli.CLIColorProvider{})
	}

	reference := classification(first.Result)
	for _, res := range results {
		if res.Err == nil && classification(res.Result) != reference {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! The engines reached different roots from the same starting point.\n")
			return apperrors.ExitErrorMismatch
		}
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All engines agree.\n")
	cli.DisplayResult(first.Result, p, first.Duration, cfg.Verbose, out)
	return apperrors.ExitSuccess
}
