package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/newtoncalc/internal/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

func envSet(key string) bool {
	return os.Getenv(EnvPrefix+key) != ""
}

// getEnvString returns NEWTON_<key>, or defaultVal when unset.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt64 returns NEWTON_<key> as an int64, or defaultVal when unset or
// invalid.
func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool accepts true/1/yes and false/0/no, case-insensitively.
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvDuration accepts time.ParseDuration syntax ("30s", "1m30s").
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet reports whether name was given on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// applyEnvOverrides fills every setting not given on the command line from
// its NEWTON_* variable:
//
//	NEWTON_MAXITER, NEWTON_Z0, NEWTON_ROOTS, NEWTON_POLES, NEWTON_PRESET,
//	NEWTON_SCENE, NEWTON_ALGO, NEWTON_TIMEOUT, NEWTON_PORT, NEWTON_OUTPUT,
//	NEWTON_SERVER, NEWTON_JSON, NEWTON_VERBOSE, NEWTON_QUIET,
//	NEWTON_INTERACTIVE, NEWTON_NO_COLOR, NEWTON_MAX_ITER_LIMIT,
//	NEWTON_CACHE_SIZE
//
// Malformed numbers, booleans and durations are ignored. Malformed complex
// values are reported as a ConfigError.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet, z0 *complexValue, roots, poles *complexListValue) error {
	applyNumericOverrides(config, fs)
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
	return applyComplexOverrides(fs, z0, roots, poles)
}

func applyNumericOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "maxiter") {
		config.MaxIter = getEnvInt64("MAXITER", config.MaxIter)
	}
	if !isFlagSet(fs, "max-iter-limit") {
		config.MaxIterLimit = getEnvInt64("MAX_ITER_LIMIT", config.MaxIterLimit)
	}
	if !isFlagSet(fs, "cache-size") {
		config.CacheSize = getEnvInt("CACHE_SIZE", config.CacheSize)
	}
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "algo") {
		config.Algo = getEnvString("ALGO", config.Algo)
	}
	if !isFlagSet(fs, "port") {
		config.Port = getEnvString("PORT", config.Port)
	}
	if !isFlagSet(fs, "output") && !isFlagSet(fs, "o") {
		config.OutputFile = getEnvString("OUTPUT", config.OutputFile)
	}
	if !isFlagSet(fs, "preset") {
		config.Preset = getEnvString("PRESET", config.Preset)
	}
	if !isFlagSet(fs, "scene") {
		config.SceneFile = getEnvString("SCENE", config.SceneFile)
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "server") {
		config.ServerMode = getEnvBool("SERVER", config.ServerMode)
	}
	if !isFlagSet(fs, "json") {
		config.JSONOutput = getEnvBool("JSON", config.JSONOutput)
	}
	if !isFlagSet(fs, "v") {
		config.Verbose = getEnvBool("VERBOSE", config.Verbose)
	}
	if !isFlagSet(fs, "quiet") && !isFlagSet(fs, "q") {
		config.Quiet = getEnvBool("QUIET", config.Quiet)
	}
	if !isFlagSet(fs, "interactive") {
		config.Interactive = getEnvBool("INTERACTIVE", config.Interactive)
	}
	if !isFlagSet(fs, "no-color") {
		config.NoColor = getEnvBool("NO_COLOR", config.NoColor)
	}
}

func applyComplexOverrides(fs *flag.FlagSet, z0 *complexValue, roots, poles *complexListValue) error {
	if !isFlagSet(fs, "z0") && envSet("Z0") {
		if err := z0.Set(os.Getenv(EnvPrefix + "Z0")); err != nil {
			return apperrors.NewConfigError("%sZ0: %v", EnvPrefix, err)
		}
	}
	if !isFlagSet(fs, "roots") && envSet("ROOTS") {
		if err := roots.Set(os.Getenv(EnvPrefix + "ROOTS")); err != nil {
			return apperrors.NewConfigError("%sROOTS: %v", EnvPrefix, err)
		}
	}
	if !isFlagSet(fs, "poles") && envSet("POLES") {
		if err := poles.Set(os.Getenv(EnvPrefix + "POLES")); err != nil {
			return apperrors.NewConfigError("%sPOLES: %v", EnvPrefix, err)
		}
	}
	return nil
}
