package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agbru/newtoncalc/internal/cli"
	"github.com/agbru/newtoncalc/internal/config"
	apperrors "github.com/agbru/newtoncalc/internal/errors"
	"github.com/agbru/newtoncalc/internal/logging"
	"github.com/agbru/newtoncalc/internal/newton"
	"github.com/agbru/newtoncalc/internal/orchestration"
	"github.com/agbru/newtoncalc/internal/preset"
	"github.com/agbru/newtoncalc/internal/server"
	"github.com/agbru/newtoncalc/internal/ui"
	"github.com/agbru/newtoncalc/pkg/models"
)

// Application is one parsed invocation of newtoncalc.
type Application struct {
	Config config.AppConfig
	// Factory provides the engines; tests inject a newton.TestFactory.
	Factory   newton.EngineFactory
	ErrWriter io.Writer
	// In feeds the REPL; nil means os.Stdin.
	In io.Reader
}

// New parses args (program name first) and returns a ready application.
// Parse and validation errors have already been reported on errWriter.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := newton.GlobalFactory()

	programName := "newtoncalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List())
	if err != nil {
		return nil, err
	}
	logging.SetVerbose(cfg.Verbose)

	return &Application{
		Config:    cfg,
		Factory:   factory,
		ErrWriter: errWriter,
	}, nil
}

// Run dispatches to completion, server, REPL or a one-shot run, in that
// order of precedence, and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)

	if a.Config.ServerMode {
		return a.runServer()
	}
	if a.Config.Interactive {
		return a.runREPL(out)
	}
	return a.runIterate(ctx, out)
}

func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List(), preset.Names()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

func (a *Application) runServer() int {
	srv := server.NewServer(a.Factory, a.Config)
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) runREPL(out io.Writer) int {
	repl := cli.NewREPL(a.Factory.GetAll(), cli.REPLConfig{
		DefaultAlgo: a.Config.Algo,
		Timeout:     a.Config.Timeout,
		Problem:     a.Config.ToProblem(),
		SceneName:   sceneLabel(a.Config),
	})
	repl.SetOutput(out)
	if a.In != nil {
		repl.SetInput(a.In)
	}
	repl.Start()
	return apperrors.ExitSuccess
}

// sceneLabel names where the roots came from.
func sceneLabel(cfg config.AppConfig) string {
	switch {
	case cfg.SceneFile != "":
		return cfg.SceneFile
	case cfg.Preset != "":
		return cfg.Preset
	default:
		return "command line"
	}
}

// runIterate runs the selected engines once on the configured problem.
func (a *Application) runIterate(ctx context.Context, out io.Writer) int {
	ctx, cancel := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancel.Cleanup()

	engines := cli.GetEnginesToRun(a.Config, a.Factory)
	if len(engines) == 0 {
		fmt.Fprintf(a.ErrWriter, "No engine matches %q.\n", a.Config.Algo)
		return apperrors.ExitErrorConfig
	}

	if !a.Config.JSONOutput && !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(engines, out)
	}

	// Progress would corrupt machine-readable output.
	progressOut := out
	if a.Config.Quiet || a.Config.JSONOutput {
		progressOut = io.Discard
	}

	p := a.Config.ToProblem()
	results := orchestration.ExecuteIterations(ctx, engines, p, progressOut, progressObservers(a.Config, log.Logger)...)

	if a.Config.JSONOutput {
		return printJSONResults(results, p.MaxIter, out)
	}

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
	}
	return a.analyzeResultsWithOutput(results, outputCfg, out)
}

// progressLogStep is the progress advance between two debug lines in
// verbose mode.
const progressLogStep = 0.25

// progressObservers returns the observers added to the progress display:
// debug progress lines on logger in verbose mode, nothing otherwise.
func progressObservers(cfg config.AppConfig, logger zerolog.Logger) []newton.ProgressObserver {
	if !cfg.Verbose {
		return nil
	}
	return []newton.ProgressObserver{newton.NewLoggingObserver(logger, progressLogStep)}
}

func (a *Application) analyzeResultsWithOutput(results []orchestration.IterationResult, outputCfg cli.OutputConfig, out io.Writer) int {
	// AnalyzeComparisonResults reorders results, so keep a copy.
	best, ok := findBestResult(results)

	if outputCfg.Quiet && ok {
		cli.DisplayQuietResult(out, best.Result, a.Config.MaxIter)
		if err := a.saveResultIfNeeded(best, outputCfg); err != nil {
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess
	}

	exitCode := orchestration.AnalyzeComparisonResults(results, a.Config, out)

	if ok && exitCode == apperrors.ExitSuccess && outputCfg.OutputFile != "" {
		if err := a.saveResultIfNeeded(best, outputCfg); err != nil {
			return apperrors.ExitErrorGeneric
		}
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
			cli.ColorGreen(), cli.ColorCyan(), outputCfg.OutputFile, cli.ColorReset())
	}
	return exitCode
}

// IsHelpError reports whether err comes from -h or -help.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// findBestResult returns the fastest successful result.
func findBestResult(results []orchestration.IterationResult) (orchestration.IterationResult, bool) {
	var best orchestration.IterationResult
	found := false
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if !found || res.Duration < best.Duration {
			best, found = res, true
		}
	}
	return best, found
}

func (a *Application) saveResultIfNeeded(res orchestration.IterationResult, cfg cli.OutputConfig) error {
	if cfg.OutputFile == "" {
		return nil
	}
	if err := cli.WriteResultToFile(res.Result, a.Config.ToProblem(), res.Duration, res.Name, cfg); err != nil {
		fmt.Fprintf(a.errWriter(), "Error saving result: %v\n", err)
		return err
	}
	return nil
}

func (a *Application) errWriter() io.Writer {
	if a.ErrWriter == nil {
		return os.Stderr
	}
	return a.ErrWriter
}

// printJSONResults writes one models.IterationResult per engine as an
// indented JSON array. When every engine failed, the exit code is that of
// the first failure.
func printJSONResults(results []orchestration.IterationResult, maxiter int64, out io.Writer) int {
	output := make([]models.IterationResult, len(results))
	var firstErr error
	failures := 0
	for i, res := range results {
		output[i] = models.FromResult(res.Name, res.Result, maxiter, res.Duration, res.Err)
		if res.Err != nil {
			failures++
			if firstErr == nil {
				firstErr = res.Err
			}
		}
	}

	data, err := models.Encode(output)
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	if _, err := out.Write(data); err != nil {
		return apperrors.ExitErrorGeneric
	}
	if len(results) > 0 && failures == len(results) {
		return apperrors.HandleIterationError(firstErr, 0, io.Discard, cli.CLIColorProvider{})
	}
	return apperrors.ExitSuccess
}
