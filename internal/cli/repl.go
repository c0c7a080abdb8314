package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agbru/newtoncalc/internal/config"
	"github.com/agbru/newtoncalc/internal/newton"
	"github.com/agbru/newtoncalc/internal/preset"
)

// REPLConfig holds the initial state of an interactive session.
type REPLConfig struct {
	// DefaultAlgo is the engine selected at startup; "all" or "" picks the
	// canonical engine.
	DefaultAlgo string
	// Timeout bounds each iterate or compare command.
	Timeout time.Duration
	// Problem is the starting function, budget and starting point.
	Problem newton.Problem
	// SceneName labels Problem in the status output.
	SceneName string
}

// REPL is an interactive session that edits one problem and iterates it.
type REPL struct {
	config      REPLConfig
	registry    map[string]newton.Engine
	currentAlgo string
	problem     newton.Problem
	sceneName   string
	in          io.Reader
	out         io.Writer
}

// NewREPL returns a session over the engines in registry.
func NewREPL(registry map[string]newton.Engine, config REPLConfig) *REPL {
	currentAlgo := config.DefaultAlgo
	if _, ok := registry[currentAlgo]; !ok {
		currentAlgo = ""
		if _, ok := registry[newton.DefaultAlgorithm]; ok {
			currentAlgo = newton.DefaultAlgorithm
		} else if names := sortedNames(registry); len(names) > 0 {
			currentAlgo = names[0]
		}
	}

	problem := config.Problem
	problem.Roots = slices.Clone(problem.Roots)
	problem.Poles = slices.Clone(problem.Poles)

	return &REPL{
		config:      config,
		registry:    registry,
		currentAlgo: currentAlgo,
		problem:     problem,
		sceneName:   config.SceneName,
		in:          os.Stdin,
		out:         os.Stdout,
	}
}

// SetInput replaces the input reader.
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput replaces the output writer.
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Problem returns the problem as currently edited.
func (r *REPL) Problem() newton.Problem {
	return r.problem
}

// Start reads commands until exit or end of input.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, ColorGreen()+"newton> "+ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ColorRed(), err, ColorReset())
			continue
		}

		line := strings.TrimSpace(input)
		if line != "" && !r.processCommand(line) {
			return
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s║%s      %sNewton Basin Calculator - Interactive Mode%s          %s║%s\n",
		ColorCyan(), ColorReset(), ColorBold(), ColorReset(), ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ColorCyan(), ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ColorBold(), ColorReset())
	for _, line := range [][2]string{
		{"iterate [z0]", "Iterate from z0 (or the current start) with the current engine"},
		{"compare [z0]", "Iterate with every engine and compare the results"},
		{"roots <list>", "Set the roots, e.g. roots 1, -1, 1i"},
		{"poles <list>", "Set the poles; 'poles none' removes them"},
		{"z0 <complex>", "Set the starting point"},
		{"maxiter <n>", "Set the step budget"},
		{"preset <name>", "Load a built-in scene (" + strings.Join(preset.Names(), ", ") + ")"},
		{"algo <name>", "Change engine (" + r.getAlgoList() + ")"},
		{"list", "List available engines"},
		{"status", "Display the current problem"},
		{"help", "Display this help"},
		{"exit / quit", "Exit interactive mode"},
	} {
		fmt.Fprintf(r.out, "  %s%-14s%s - %s\n", ColorYellow(), line[0], ColorReset(), line[1])
	}
	fmt.Fprintf(r.out, "A bare complex number iterates from that point.\n")
}

func sortedNames(registry map[string]newton.Engine) []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *REPL) getAlgoList() string {
	return strings.Join(sortedNames(r.registry), ", ")
}

// processCommand runs one command line and reports whether the session
// continues.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "iterate", "it", "run":
		r.cmdIterate(args)
	case "compare", "cmp":
		r.cmdCompare(args)
	case "roots":
		r.cmdRoots(args)
	case "poles":
		r.cmdPoles(args)
	case "z0", "start":
		r.cmdZ0(args)
	case "maxiter", "max":
		r.cmdMaxIter(args)
	case "preset", "p":
		r.cmdPreset(args)
	case "algo", "a":
		r.cmdAlgo(args)
	case "list", "ls":
		r.cmdList()
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ColorGreen(), ColorReset())
		return false
	default:
		if z, err := config.ParseComplex(strings.Join(parts, "")); err == nil {
			r.iterate(z)
		} else {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ColorRed(), cmd, ColorReset())
			fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ColorYellow(), ColorReset())
		}
	}
	return true
}

// startingPoint returns the z0 given in args, or the current one.
func (r *REPL) startingPoint(args []string) (complex128, bool) {
	if len(args) == 0 {
		return r.problem.Z0, true
	}
	z, err := config.ParseComplex(strings.Join(args, ""))
	if err != nil {
		fmt.Fprintf(r.out, "%s%v%s\n", ColorRed(), err, ColorReset())
		return 0, false
	}
	return z, true
}

func (r *REPL) cmdIterate(args []string) {
	if z, ok := r.startingPoint(args); ok {
		r.iterate(z)
	}
}

// iterate runs the current engine from z0 with a progress bar.
func (r *REPL) iterate(z0 complex128) {
	engine, ok := r.registry[r.currentAlgo]
	if !ok {
		fmt.Fprintf(r.out, "%sEngine not found: %s%s\n", ColorRed(), r.currentAlgo, ColorReset())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	p := r.problem
	p.Z0 = z0
	fmt.Fprintf(r.out, "Iterating from %s%s%s with %s%s%s...\n",
		ColorMagenta(), config.FormatComplex(z0), ColorReset(),
		ColorCyan(), engine.Name(), ColorReset())

	progressChan := make(chan newton.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, progressChan, 1, r.out)

	start := time.Now()
	res, err := engine.Iterate(ctx, progressChan, 0, p, newton.Options{})
	duration := time.Since(start)
	close(progressChan)
	wg.Wait()

	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}
	DisplayResult(res, p, duration, false, r.out)
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdCompare(args []string) {
	z0, ok := r.startingPoint(args)
	if !ok {
		return
	}
	p := r.problem
	p.Z0 = z0

	fmt.Fprintf(r.out, "\n%sComparison from %s:%s\n", ColorBold(), config.FormatComplex(z0), ColorReset())
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────────────%s\n", ColorCyan(), ColorReset())

	var reference string
	for _, name := range sortedNames(r.registry) {
		engine := r.registry[name]
		ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
		start := time.Now()
		res, err := engine.Iterate(ctx, nil, 0, p, newton.Options{})
		duration := time.Since(start)
		cancel()

		if err != nil {
			fmt.Fprintf(r.out, "  %s%-10s%s: %sError - %v%s\n", ColorYellow(), name, ColorReset(), ColorRed(), err, ColorReset())
			continue
		}

		summary := FormatQuietResult(res, p.MaxIter)
		classification := classify(res)
		if reference == "" {
			reference = classification
		}
		status := ColorGreen() + "✓" + ColorReset()
		if classification != reference {
			status = ColorRed() + "✗ INCONSISTENT" + ColorReset()
		}
		fmt.Fprintf(r.out, "  %s%-10s%s: %-28s %s%10s%s %s\n",
			ColorYellow(), name, ColorReset(),
			summary,
			ColorCyan(), FormatExecutionDuration(duration), ColorReset(),
			status)
	}
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────────────%s\n\n", ColorCyan(), ColorReset())
}

// classify reduces a result to what engines must agree on: the root
// reached, or the fact that none was.
func classify(res newton.Result) string {
	if !res.Converged {
		return "none"
	}
	return config.FormatComplex(res.Root)
}

func (r *REPL) cmdRoots(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Roots: %s\n", formatList(r.problem.Roots))
		return
	}
	roots, err := config.ParseComplexList(strings.Join(args, ""))
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid roots: %v%s\n", ColorRed(), err, ColorReset())
		return
	}
	r.problem.Roots = roots
	r.sceneName = "custom"
	fmt.Fprintf(r.out, "Roots set to: %s%s%s\n", ColorGreen(), formatList(roots), ColorReset())
}

func (r *REPL) cmdPoles(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Poles: %s\n", formatList(r.problem.Poles))
		return
	}
	text := strings.Join(args, "")
	if strings.EqualFold(text, "none") {
		text = ""
	}
	poles, err := config.ParseComplexList(text)
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid poles: %v%s\n", ColorRed(), err, ColorReset())
		return
	}
	r.problem.Poles = poles
	r.sceneName = "custom"
	fmt.Fprintf(r.out, "Poles set to: %s%s%s\n", ColorGreen(), formatList(poles), ColorReset())
}

func (r *REPL) cmdZ0(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "z0: %s\n", config.FormatComplex(r.problem.Z0))
		return
	}
	z, ok := r.startingPoint(args)
	if !ok {
		return
	}
	r.problem.Z0 = z
	fmt.Fprintf(r.out, "z0 set to: %s%s%s\n", ColorGreen(), config.FormatComplex(z), ColorReset())
}

func (r *REPL) cmdMaxIter(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "maxiter: %d\n", r.problem.MaxIter)
		return
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || n < 0 {
		fmt.Fprintf(r.out, "%sInvalid value: %s (expected a non-negative integer)%s\n", ColorRed(), args[0], ColorReset())
		return
	}
	r.problem.MaxIter = n
	fmt.Fprintf(r.out, "maxiter set to: %s%d%s\n", ColorGreen(), n, ColorReset())
}

func (r *REPL) cmdPreset(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: preset <name>%s\n", ColorRed(), ColorReset())
		fmt.Fprintf(r.out, "Available presets: %s, unity<n>, anim:<radians>\n", strings.Join(preset.Names(), ", "))
		return
	}
	scene, err := preset.Lookup(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%s%v%s\n", ColorRed(), err, ColorReset())
		return
	}
	r.problem.Roots = scene.Roots
	r.problem.Poles = scene.Poles
	r.sceneName = scene.Name
	fmt.Fprintf(r.out, "Loaded %s%s%s: %d roots, %d poles\n", ColorGreen(), scene.Name, ColorReset(), len(scene.Roots), len(scene.Poles))
}

func (r *REPL) cmdAlgo(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: algo <name>%s\n", ColorRed(), ColorReset())
		fmt.Fprintf(r.out, "Available engines: %s\n", r.getAlgoList())
		return
	}

	name := strings.ToLower(args[0])
	engine, ok := r.registry[name]
	if !ok {
		fmt.Fprintf(r.out, "%sUnknown engine: %s%s\n", ColorRed(), name, ColorReset())
		fmt.Fprintf(r.out, "Available engines: %s\n", r.getAlgoList())
		return
	}
	r.currentAlgo = name
	fmt.Fprintf(r.out, "Engine changed to: %s%s%s\n", ColorGreen(), engine.Name(), ColorReset())
}

func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable engines:%s\n", ColorBold(), ColorReset())
	for _, name := range sortedNames(r.registry) {
		marker := "  "
		if name == r.currentAlgo {
			marker = ColorGreen() + "► " + ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-10s%s - %s\n", marker, ColorYellow(), name, ColorReset(), r.registry[name].Name())
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent problem:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Engine:   %s%s%s\n", ColorCyan(), r.currentAlgo, ColorReset())
	fmt.Fprintf(r.out, "  Scene:    %s%s%s\n", ColorCyan(), r.sceneName, ColorReset())
	fmt.Fprintf(r.out, "  Roots:    %s%s%s\n", ColorCyan(), formatList(r.problem.Roots), ColorReset())
	fmt.Fprintf(r.out, "  Poles:    %s%s%s\n", ColorCyan(), formatList(r.problem.Poles), ColorReset())
	fmt.Fprintf(r.out, "  z0:       %s%s%s\n", ColorCyan(), config.FormatComplex(r.problem.Z0), ColorReset())
	fmt.Fprintf(r.out, "  maxiter:  %s%d%s\n", ColorCyan(), r.problem.MaxIter, ColorReset())
	fmt.Fprintf(r.out, "  Timeout:  %s%s%s\n", ColorCyan(), r.config.Timeout, ColorReset())
	fmt.Fprintln(r.out)
}

func formatList(zs []complex128) string {
	if len(zs) == 0 {
		return "(none)"
	}
	return config.FormatComplexList(zs)
}
