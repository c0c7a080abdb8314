package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/newtoncalc/internal/config"
	"github.com/agbru/newtoncalc/internal/newton"
	"github.com/agbru/newtoncalc/pkg/models"
)

// OutputConfig selects how a finished run is reported.
type OutputConfig struct {
	// OutputFile, when set, receives a JSON copy of the result.
	OutputFile string
	// Quiet prints a single "<root> <niter>" line.
	Quiet bool
	// Verbose adds the root index and the steps actually taken.
	Verbose bool
}

// WriteResultToFile stores res as a models.ResultFile at config.OutputFile,
// creating parent directories as needed. It does nothing when no file is
// configured.
func WriteResultToFile(res newton.Result, p newton.Problem, duration time.Duration, algo string, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	doc := models.ResultFile{
		Generated: time.Now().Format(time.RFC3339),
		MaxIter:   p.MaxIter,
		Z0:        models.FromComplex(p.Z0),
		Roots:     models.FromComplexList(p.Roots),
		Poles:     models.FromComplexList(p.Poles),
		Result:    models.FromResult(algo, res, p.MaxIter, duration, nil),
	}
	data, err := models.Encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if dir := filepath.Dir(config.OutputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(config.OutputFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// FormatQuietResult renders the boundary record as one scriptable line:
// "<root> <niter>" on convergence, "none <maxiter>" otherwise.
func FormatQuietResult(res newton.Result, maxiter int64) string {
	end := res.IterEnd(maxiter)
	if end.Z == nil {
		return fmt.Sprintf("none %d", end.Niter)
	}
	return fmt.Sprintf("%s %d", config.FormatComplex(*end.Z), end.Niter)
}

// DisplayQuietResult prints FormatQuietResult followed by a newline.
func DisplayQuietResult(out io.Writer, res newton.Result, maxiter int64) {
	fmt.Fprintln(out, FormatQuietResult(res, maxiter))
}

// DisplayResultWithConfig prints res in the mode selected by config, then
// saves it when an output file is configured.
func DisplayResultWithConfig(out io.Writer, res newton.Result, p newton.Problem, duration time.Duration, algo string, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, res, p.MaxIter)
	} else {
		DisplayResult(res, p, duration, config.Verbose, out)
	}

	if config.OutputFile == "" {
		return nil
	}
	if err := WriteResultToFile(res, p, duration, algo, config); err != nil {
		return err
	}
	if !config.Quiet {
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n", ColorGreen(), ColorCyan(), config.OutputFile, ColorReset())
	}
	return nil
}
