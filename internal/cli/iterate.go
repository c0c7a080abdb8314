package cli

import (
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/agbru/newtoncalc/internal/config"
	"github.com/agbru/newtoncalc/internal/newton"
)

// GetEnginesToRun resolves cfg.Algo against factory: "all" yields every
// registered engine in name order, a known name yields that engine alone
// and anything else yields nil.
func GetEnginesToRun(cfg config.AppConfig, factory newton.EngineFactory) []newton.Engine {
	if cfg.Algo == "all" {
		names := factory.List()
		engines := make([]newton.Engine, 0, len(names))
		for _, name := range names {
			if engine, err := factory.Get(name); err == nil {
				engines = append(engines, engine)
			}
		}
		return engines
	}
	if engine, err := factory.Get(cfg.Algo); err == nil {
		return []newton.Engine{engine}
	}
	return nil
}

// FusedMultiplyAdd describes whether floating-point multiply-adds may be
// fused on this machine. Fusion changes the last bits of f and f', which
// can shift step counts near basin boundaries.
func FusedMultiplyAdd() string {
	switch runtime.GOARCH {
	case "amd64":
		if cpu.X86.HasFMA {
			return "available (used only when built with GOAMD64=v3 or later)"
		}
		return "unavailable"
	case "arm64", "ppc64", "ppc64le", "s390x", "riscv64", "loong64":
		return "fused by the compiler"
	default:
		return "unavailable"
	}
}

// PrintExecutionConfig prints the problem, the timeout and the machine.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	writeOut(out, "--- Execution Configuration ---\n")
	source := cfg.Preset
	if cfg.SceneFile != "" {
		source = cfg.SceneFile
	}
	if source == "" {
		source = "command line"
	}
	writeOut(out, "Scene: %s%s%s with %s%d%s roots and %s%d%s poles.\n",
		ColorMagenta(), source, ColorReset(),
		ColorCyan(), len(cfg.Roots), ColorReset(),
		ColorCyan(), len(cfg.Poles), ColorReset())
	writeOut(out, "Start: %s%s%s, at most %s%d%s steps, timeout %s%s%s.\n",
		ColorMagenta(), config.FormatComplex(cfg.Z0), ColorReset(),
		ColorCyan(), cfg.MaxIter, ColorReset(),
		ColorYellow(), cfg.Timeout, ColorReset())
	writeOut(out, "Environment: %s%d%s logical processors, Go %s%s%s, FMA %s.\n",
		ColorCyan(), runtime.NumCPU(), ColorReset(),
		ColorCyan(), runtime.Version(), ColorReset(),
		FusedMultiplyAdd())
}

// PrintExecutionMode announces a single run or a comparison.
func PrintExecutionMode(engines []newton.Engine, out io.Writer) {
	var modeDesc string
	if len(engines) > 1 {
		modeDesc = fmt.Sprintf("Parallel comparison of %d engines", len(engines))
	} else {
		modeDesc = fmt.Sprintf("Single run with the %s%s%s engine", ColorGreen(), engines[0].Name(), ColorReset())
	}
	writeOut(out, "Execution mode: %s.\n", modeDesc)
	writeOut(out, "\n--- Starting Execution ---\n")
}

func writeOut(out io.Writer, format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}
