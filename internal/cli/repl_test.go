package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/agbru/newtoncalc/internal/newton"
	"github.com/agbru/newtoncalc/internal/testutil"
)

func newTestREPL(registry map[string]newton.Engine) (*REPL, *bytes.Buffer) {
	repl := NewREPL(registry, REPLConfig{
		DefaultAlgo: "all",
		Timeout:     time.Second,
		Problem:     newton.Problem{MaxIter: 30, Z0: 0.9 + 0.1i, Roots: cubeRoot},
		SceneName:   "unity3",
	})
	var out bytes.Buffer
	repl.SetOutput(&out)
	return repl, &out
}

func realEngines() map[string]newton.Engine {
	return newton.NewDefaultFactory().GetAll()
}

func TestNewREPL_PicksEngine(t *testing.T) {
	t.Parallel()

	repl, _ := newTestREPL(realEngines())
	if repl.currentAlgo != newton.DefaultAlgorithm {
		t.Errorf("currentAlgo = %q, want %q", repl.currentAlgo, newton.DefaultAlgorithm)
	}

	only := map[string]newton.Engine{"zeta": &newton.MockEngine{}}
	repl, _ = newTestREPL(only)
	if repl.currentAlgo != "zeta" {
		t.Errorf("currentAlgo = %q, want zeta", repl.currentAlgo)
	}

	explicit := NewREPL(realEngines(), REPLConfig{DefaultAlgo: "logderiv"})
	if explicit.currentAlgo != "logderiv" {
		t.Errorf("currentAlgo = %q, want logderiv", explicit.currentAlgo)
	}
}

func TestNewREPL_CopiesProblem(t *testing.T) {
	t.Parallel()

	roots := []complex128{1, -1}
	repl := NewREPL(realEngines(), REPLConfig{Problem: newton.Problem{Roots: roots}})
	repl.problem.Roots[0] = 5
	if roots[0] != 1 {
		t.Error("the REPL must not write through to the caller's roots")
	}
}

func TestREPL_EditCommands(t *testing.T) {
	t.Parallel()

	repl, out := newTestREPL(realEngines())
	for _, cmd := range []string{"roots 1, -1", "poles 0.5i", "z0 2+0.1i", "maxiter 40"} {
		if !repl.processCommand(cmd) {
			t.Fatalf("%q should not exit", cmd)
		}
	}
	want := newton.Problem{MaxIter: 40, Z0: 2 + 0.1i, Roots: []complex128{1, -1}, Poles: []complex128{0.5i}}
	if diff := cmp.Diff(want, repl.Problem()); diff != "" {
		t.Errorf("problem mismatch (-want +got):\n%s", diff)
	}

	repl.processCommand("poles none")
	if len(repl.Problem().Poles) != 0 {
		t.Errorf("poles none should clear poles, got %v", repl.Problem().Poles)
	}

	out.Reset()
	for _, bad := range []string{"roots 1,x", "maxiter -1", "maxiter many", "z0 abc", "preset nope"} {
		repl.processCommand(bad)
	}
	got := testutil.StripAnsiCodes(out.String())
	for _, fragment := range []string{"Invalid roots", "expected a non-negative integer", "invalid complex number", "unknown preset"} {
		if !strings.Contains(got, fragment) {
			t.Errorf("output missing %q:\n%s", fragment, got)
		}
	}
	if repl.Problem().MaxIter != 40 {
		t.Error("rejected commands must not change the problem")
	}
}

func TestREPL_Preset(t *testing.T) {
	t.Parallel()

	repl, out := newTestREPL(realEngines())
	repl.processCommand("preset unity4")
	if len(repl.Problem().Roots) != 4 || repl.sceneName != "unity4" {
		t.Errorf("preset not loaded: %+v (%s)", repl.Problem(), repl.sceneName)
	}
	if !strings.Contains(testutil.StripAnsiCodes(out.String()), "Loaded unity4: 4 roots, 0 poles") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestREPL_Iterate(t *testing.T) {
	t.Parallel()

	repl, out := newTestREPL(realEngines())
	repl.processCommand("roots 1,-1")
	out.Reset()
	repl.processCommand("iterate 2")

	got := testutil.StripAnsiCodes(out.String())
	if !strings.Contains(got, "Root       : 1+0i") || !strings.Contains(got, "Status     : converged") {
		t.Errorf("unexpected iterate output:\n%s", got)
	}
	if repl.Problem().Z0 != 0.9+0.1i {
		t.Error("iterate with an argument must not change z0")
	}

	out.Reset()
	repl.processCommand("-2")
	if !strings.Contains(testutil.StripAnsiCodes(out.String()), "Root       : -1+0i") {
		t.Errorf("bare complex should iterate, got:\n%s", out.String())
	}
}

func TestREPL_IterateEngineError(t *testing.T) {
	t.Parallel()

	registry := map[string]newton.Engine{
		"mock": &newton.MockEngine{Fn: func(context.Context, newton.Problem) (newton.Result, error) {
			return newton.Result{}, newton.ErrNegativeMaxIter
		}},
	}
	repl, out := newTestREPL(registry)
	repl.processCommand("iterate")
	if !strings.Contains(out.String(), "Error: maxiter must be non-negative") {
		t.Errorf("engine error should be printed, got %q", out.String())
	}
}

func TestREPL_Compare(t *testing.T) {
	t.Parallel()

	repl, out := newTestREPL(realEngines())
	repl.processCommand("compare")
	got := testutil.StripAnsiCodes(out.String())
	for _, name := range []string{"logderiv", "recursive"} {
		if !strings.Contains(got, name) {
			t.Errorf("compare output missing %s:\n%s", name, got)
		}
	}
	if strings.Contains(got, "INCONSISTENT") {
		t.Errorf("engines should agree on the cube roots:\n%s", got)
	}

	registry := map[string]newton.Engine{
		"a": &newton.MockEngine{Result: newton.Result{Converged: true, Root: 1}},
		"b": &newton.MockEngine{Result: newton.Result{Outcome: newton.OutcomeExhausted}},
	}
	repl, out = newTestREPL(registry)
	repl.processCommand("cmp")
	if !strings.Contains(out.String(), "INCONSISTENT") {
		t.Errorf("disagreeing engines should be flagged:\n%s", out.String())
	}
}

func TestREPL_AlgoListStatus(t *testing.T) {
	t.Parallel()

	repl, out := newTestREPL(realEngines())
	repl.processCommand("algo LOGDERIV")
	if repl.currentAlgo != "logderiv" {
		t.Errorf("currentAlgo = %q", repl.currentAlgo)
	}
	repl.processCommand("algo nope")
	if repl.currentAlgo != "logderiv" {
		t.Error("unknown engine must not change the selection")
	}

	out.Reset()
	repl.processCommand("list")
	repl.processCommand("status")
	got := testutil.StripAnsiCodes(out.String())
	for _, fragment := range []string{"► logderiv", "Scene:    unity3", "maxiter:  30", "Poles:    (none)"} {
		if !strings.Contains(got, fragment) {
			t.Errorf("output missing %q:\n%s", fragment, got)
		}
	}
}

func TestREPL_Start(t *testing.T) {
	t.Parallel()

	repl, out := newTestREPL(realEngines())
	repl.SetInput(strings.NewReader("help\nbogus\n\nmaxiter 12\nexit\nmaxiter 99\n"))
	repl.Start()

	got := testutil.StripAnsiCodes(out.String())
	if !strings.Contains(got, "Newton Basin Calculator") || !strings.Contains(got, "Unknown command: bogus") {
		t.Errorf("unexpected session output:\n%s", got)
	}
	if !strings.Contains(got, "Goodbye!") {
		t.Error("exit should say goodbye")
	}
	if repl.Problem().MaxIter != 12 {
		t.Errorf("commands after exit must not run, maxiter = %d", repl.Problem().MaxIter)
	}
}

func TestREPL_StartEOF(t *testing.T) {
	t.Parallel()

	repl, out := newTestREPL(realEngines())
	repl.SetInput(strings.NewReader("maxiter 7"))
	repl.Start()
	if repl.Problem().MaxIter != 7 {
		t.Errorf("a final line without newline should still run, maxiter = %d", repl.Problem().MaxIter)
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Error("EOF should end the session")
	}
}
