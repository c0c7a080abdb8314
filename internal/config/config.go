// Package config provides the configuration management for the newtoncalc
// application: the AppConfig structure, command-line parsing with environment
// overrides, and validation.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	apperrors "github.com/agbru/newtoncalc/internal/errors"
	"github.com/agbru/newtoncalc/internal/newton"
	"github.com/agbru/newtoncalc/internal/preset"
)

// EnvPrefix is the prefix of every environment variable read by newtoncalc.
const EnvPrefix = "NEWTON_"

// Default configuration values.
const (
	// DefaultMaxIter is the per-trajectory step budget.
	DefaultMaxIter int64 = 30
	// DefaultZ0 is the starting point when none is given.
	DefaultZ0 complex128 = 1 + 0.5i
	// DefaultTimeout bounds a whole CLI run.
	DefaultTimeout = 1 * time.Minute
	// DefaultPort is the server port.
	DefaultPort = "8080"
	// DefaultAlgo runs every registered engine and compares them.
	DefaultAlgo = "all"
	// DefaultPreset is used when neither roots, a preset nor a scene file is given.
	DefaultPreset = "unity3"
	// DefaultMaxIterLimit caps maxiter on server requests.
	DefaultMaxIterLimit int64 = 1_000_000
	// DefaultCacheSize is the number of results memoized by the service.
	DefaultCacheSize = 1024
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// MaxIter is the maximum number of Newton steps.
	MaxIter int64
	// Z0 is the starting point.
	Z0 complex128
	// Roots and Poles describe f. They are filled from -roots/-poles, then a
	// scene file, then a preset, in that order of precedence.
	Roots []complex128
	Poles []complex128
	// Preset names a built-in scene (see preset.Lookup).
	Preset string
	// SceneFile is the path of a JSON scene file.
	SceneFile string

	// Verbose enables debug logging and extra result details.
	Verbose bool
	// Timeout bounds the whole run.
	Timeout time.Duration
	// Algo is "all" or a registered engine name.
	Algo string
	// JSONOutput prints the boundary record as JSON.
	JSONOutput bool
	// ServerMode starts the HTTP server.
	ServerMode bool
	// Port is the server listening port.
	Port string
	// NoColor disables colors; NO_COLOR is honored too.
	NoColor bool
	// OutputFile receives the result, if set.
	OutputFile string
	// Quiet prints only the result.
	Quiet bool
	// Interactive starts the REPL.
	Interactive bool
	// Completion names a shell to print a completion script for.
	Completion string
	// MaxIterLimit caps maxiter for server requests.
	MaxIterLimit int64
	// CacheSize is the capacity of the result cache; 0 disables it.
	CacheSize int
}

// ToProblem returns the iteration described by the configuration.
func (c AppConfig) ToProblem() newton.Problem {
	return newton.Problem{
		MaxIter: c.MaxIter,
		Z0:      c.Z0,
		Roots:   c.Roots,
		Poles:   c.Poles,
	}
}

// Validate checks the semantic consistency of the configuration. It returns
// an apperrors.ConfigError describing the first problem found.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.MaxIter < 0 {
		return apperrors.NewConfigError("maxiter cannot be negative: %d", c.MaxIter)
	}
	if c.MaxIterLimit <= 0 {
		return apperrors.NewConfigError("max-iter-limit must be strictly positive: %d", c.MaxIterLimit)
	}
	if c.CacheSize < 0 {
		return apperrors.NewConfigError("cache size cannot be negative: %d", c.CacheSize)
	}
	if c.Algo != "all" && !slices.Contains(availableAlgos, c.Algo) {
		return apperrors.NewConfigError("unrecognized algorithm: '%s'. Valid algorithms are: 'all' or [%s]", c.Algo, strings.Join(availableAlgos, ", "))
	}
	return nil
}

// ParseConfig parses args into an AppConfig. Flags take priority over
// NEWTON_* environment variables, which take priority over defaults. The
// resulting configuration is validated against availableAlgos.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	algoHelp := fmt.Sprintf("Engine to use: 'all' (default) or one of [%s].", strings.Join(availableAlgos, ", "))

	config := AppConfig{}
	z0 := complexValue{value: DefaultZ0}
	var roots, poles complexListValue

	fs.Int64Var(&config.MaxIter, "maxiter", DefaultMaxIter, "Maximum number of Newton steps.")
	fs.Var(&z0, "z0", "Starting point, e.g. 0.5+0.25i.")
	fs.Var(&roots, "roots", "Comma-separated roots, e.g. '1,-0.5+0.866i,-0.5-0.866i'. Repeat a root for multiplicity.")
	fs.Var(&poles, "poles", "Comma-separated poles.")
	fs.StringVar(&config.Preset, "preset", "", fmt.Sprintf("Built-in scene: one of [%s], unity<n> or anim:<radians>.", strings.Join(preset.Names(), ", ")))
	fs.StringVar(&config.SceneFile, "scene", "", "Path of a JSON scene file with roots, poles and optionally maxiter and z0.")
	fs.BoolVar(&config.Verbose, "v", false, "Verbose output and debug logging.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time.")
	fs.StringVar(&config.Algo, "algo", DefaultAlgo, algoHelp)
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.OutputFile, "output", "", "Output file path for the result.")
	fs.StringVar(&config.OutputFile, "o", "", "Output file path (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Interactive, "interactive", false, "Start in interactive REPL mode.")
	fs.StringVar(&config.Completion, "completion", "", "Generate shell completion script (bash, zsh, fish, powershell).")
	fs.Int64Var(&config.MaxIterLimit, "max-iter-limit", DefaultMaxIterLimit, "Largest maxiter accepted by the server.")
	fs.IntVar(&config.CacheSize, "cache-size", DefaultCacheSize, "Number of results kept in the server cache (0 disables it).")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	if err := applyEnvOverrides(&config, fs, &z0, &roots, &poles); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}

	config.Algo = strings.ToLower(config.Algo)
	if err := resolveFunction(&config, z0, roots, poles, fs); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}

	if err := config.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.New("invalid configuration")
	}
	return config, nil
}

// resolveFunction fills Roots, Poles, Z0 and possibly MaxIter. Explicit
// -roots/-poles/-z0/-maxiter win over a scene file, which wins over a preset.
// With no source at all, DefaultPreset is used.
func resolveFunction(config *AppConfig, z0 complexValue, roots, poles complexListValue, fs *flag.FlagSet) error {
	var scene preset.Scene
	sceneZ0, sceneMaxIter := complex128(0), int64(-1)
	hasSceneZ0 := false

	switch {
	case config.SceneFile != "":
		file, err := LoadScene(config.SceneFile)
		if err != nil {
			return err
		}
		scene = file.Scene
		if file.Z0 != nil {
			sceneZ0, hasSceneZ0 = *file.Z0, true
		}
		if file.MaxIter != nil {
			sceneMaxIter = *file.MaxIter
		}
	case config.Preset != "":
		s, err := preset.Lookup(config.Preset)
		if err != nil {
			return apperrors.NewConfigError("%v", err)
		}
		scene = s
	case !roots.set && !poles.set:
		scene, _ = preset.Lookup(DefaultPreset)
	}

	config.Roots, config.Poles = scene.Roots, scene.Poles
	if roots.set {
		config.Roots = roots.values
	}
	if poles.set {
		config.Poles = poles.values
	}

	config.Z0 = z0.value
	if hasSceneZ0 && !z0.set {
		config.Z0 = sceneZ0
	}
	if sceneMaxIter >= 0 && !isFlagSet(fs, "maxiter") && !envSet("MAXITER") {
		config.MaxIter = sceneMaxIter
	}
	return nil
}
