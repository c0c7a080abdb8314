package newton

import (
	"context"
	"errors"
	"testing"
)

func TestNewEngine_PanicsOnNil(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("NewEngine(nil) did not panic")
		}
	}()
	NewEngine(nil)
}

func TestNewtonEngine_Iterate(t *testing.T) {
	t.Parallel()

	for _, core := range []coreEngine{&RecursiveStrategy{}, &LogDerivativeStrategy{}} {
		core := core
		t.Run(core.Name(), func(t *testing.T) {
			t.Parallel()

			engine := NewEngine(core)
			if engine.Name() != core.Name() {
				t.Errorf("Name = %q, want %q", engine.Name(), core.Name())
			}

			ch := make(chan ProgressUpdate, 256)
			p := Problem{MaxIter: 50, Z0: complex(0.9, 0.1), Roots: cubeRoot}
			res, err := engine.Iterate(context.Background(), ch, 2, p, Options{})
			if err != nil {
				t.Fatalf("Iterate error: %v", err)
			}
			if !res.Converged || res.Root != 1 {
				t.Errorf("Iterate = %+v, want converged to 1", res)
			}

			close(ch)
			var last ProgressUpdate
			count := 0
			for u := range ch {
				if u.EngineIndex != 2 {
					t.Errorf("update for engine %d, want 2", u.EngineIndex)
				}
				last = u
				count++
			}
			if count == 0 || last.Value != 1.0 {
				t.Errorf("progress: %d updates, last %v, want final 1.0", count, last.Value)
			}
		})
	}
}

func TestNewtonEngine_RejectsNegativeMaxIter(t *testing.T) {
	t.Parallel()

	engine := NewEngine(&RecursiveStrategy{})
	_, err := engine.Iterate(context.Background(), nil, 0, Problem{MaxIter: -1}, Options{})
	if !errors.Is(err, ErrNegativeMaxIter) {
		t.Errorf("error = %v, want ErrNegativeMaxIter", err)
	}
}

func TestNewtonEngine_NilChannel(t *testing.T) {
	t.Parallel()

	engine := NewEngine(&RecursiveStrategy{})
	res, err := engine.Iterate(context.Background(), nil, 0, Problem{MaxIter: 10, Z0: 0, Roots: []complex128{1}, Poles: []complex128{0}}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomePoleProximity {
		t.Errorf("Outcome = %v, want pole_proximity", res.Outcome)
	}
}

func TestNewtonEngine_IterateNotifiesOptionObservers(t *testing.T) {
	t.Parallel()

	engine := NewEngine(&RecursiveStrategy{})
	ch := make(chan ProgressUpdate, 16)
	obs := &recordingObserver{}

	p := Problem{MaxIter: 4, Z0: 5, Poles: []complex128{0}}
	opts := Options{ProgressInterval: 2, Observers: []ProgressObserver{obs, nil}}
	if _, err := engine.Iterate(context.Background(), ch, 2, p, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := obs.snapshot()
	want := []ProgressUpdate{
		{EngineIndex: 2, Value: 0.5},
		{EngineIndex: 2, Value: 1.0},
		{EngineIndex: 2, Value: 1.0},
	}
	if len(got) != len(want) {
		t.Fatalf("updates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("update %d = %v, want %v", i, got[i], want[i])
		}
	}
	if len(ch) != len(want) {
		t.Errorf("channel received %d updates, want %d", len(ch), len(want))
	}
}

func TestNewtonEngine_IterateWithObservers(t *testing.T) {
	t.Parallel()

	engine := NewEngine(&RecursiveStrategy{}).(*NewtonEngine)
	subject := NewProgressSubject()
	obs := &recordingObserver{}
	subject.Register(obs)

	p := Problem{MaxIter: 20, Z0: 5, Poles: []complex128{0}}
	res, err := engine.IterateWithObservers(context.Background(), subject, 1, p, Options{ProgressInterval: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeExhausted {
		t.Fatalf("Outcome = %v, want exhausted", res.Outcome)
	}

	// Steps 5, 10, 15, 20 plus the final completion notice.
	got := obs.snapshot()
	want := []float64{0.25, 0.5, 0.75, 1.0, 1.0}
	if len(got) != len(want) {
		t.Fatalf("updates = %v, want values %v", got, want)
	}
	for i := range want {
		if got[i].Value != want[i] {
			t.Errorf("update %d = %v, want %v", i, got[i].Value, want[i])
		}
	}
}

func TestStrategies_AgreeOnSimpleProblems(t *testing.T) {
	t.Parallel()

	problems := []Problem{
		{MaxIter: 50, Z0: complex(0.9, 0.1), Roots: cubeRoot},
		{MaxIter: 50, Z0: complex(-0.4, 0.9), Roots: cubeRoot},
		{MaxIter: 50, Z0: complex(3, 0.5), Roots: []complex128{0}},
		{MaxIter: 50, Z0: 0, Roots: []complex128{1}, Poles: []complex128{0}},
		{MaxIter: 50, Z0: 1, Roots: []complex128{1, 1}},
	}

	rec, logd := &RecursiveStrategy{}, &LogDerivativeStrategy{}
	for _, p := range problems {
		a, _ := rec.IterateCore(context.Background(), nil, p, Options{})
		b, _ := logd.IterateCore(context.Background(), nil, p, Options{})
		if a.Converged != b.Converged || a.Root != b.Root || a.Outcome != b.Outcome {
			t.Errorf("problem %+v: recursive %+v, logderiv %+v", p, a, b)
		}
	}
}

func TestLogDerivativeStep_FallsBack(t *testing.T) {
	t.Parallel()

	// Roots at ±1 cancel the sum at z = 0.
	got := logDerivativeStep(0, 3, 2, []complex128{1, -1}, nil)
	if got != 1.5 {
		t.Errorf("step = %v, want f/f' = 1.5", got)
	}
	// z sitting on a root makes the sum infinite.
	got = logDerivativeStep(1, 4, 2, []complex128{1}, nil)
	if got != 2 {
		t.Errorf("step = %v, want f/f' = 2", got)
	}
}

func TestProgressHook(t *testing.T) {
	t.Parallel()

	if progressHook(nil, 10, Options{}) != nil {
		t.Error("hook without reporter should be nil")
	}
	if progressHook(func(float64) {}, 0, Options{}) != nil {
		t.Error("hook with zero budget should be nil")
	}

	var seen []float64
	hook := progressHook(func(p float64) { seen = append(seen, p) }, 4, Options{ProgressInterval: 2})
	for i := int64(1); i <= 4; i++ {
		hook(i)
	}
	if len(seen) != 2 || seen[0] != 0.5 || seen[1] != 1.0 {
		t.Errorf("reported %v, want [0.5 1]", seen)
	}
}

func TestProblem_Validate(t *testing.T) {
	t.Parallel()

	if err := (Problem{MaxIter: 0}).Validate(); err != nil {
		t.Errorf("MaxIter 0 rejected: %v", err)
	}
	if err := (Problem{MaxIter: -3}).Validate(); !errors.Is(err, ErrNegativeMaxIter) {
		t.Errorf("MaxIter -3: error = %v", err)
	}
}

func TestMockEngine(t *testing.T) {
	t.Parallel()

	m := &MockEngine{Result: Result{Converged: true, Root: 2}}
	if m.Name() != "mock" {
		t.Errorf("Name = %q", m.Name())
	}
	ch := make(chan ProgressUpdate, 1)
	res, err := m.Iterate(context.Background(), ch, 0, Problem{}, Options{})
	if err != nil || res.Root != 2 || len(ch) != 1 {
		t.Errorf("Iterate = %+v, %v, %d updates", res, err, len(ch))
	}
	obs := &recordingObserver{}
	if _, err := m.Iterate(context.Background(), nil, 4, Problem{}, Options{Observers: []ProgressObserver{obs}}); err != nil {
		t.Fatal(err)
	}
	if got := obs.snapshot(); len(got) != 1 || got[0] != (ProgressUpdate{EngineIndex: 4, Value: 1.0}) {
		t.Errorf("observer updates = %v", got)
	}

	wantErr := errors.New("boom")
	m = &MockEngine{EngineName: "x", Fn: func(context.Context, Problem) (Result, error) { return Result{}, wantErr }}
	if _, err := m.Iterate(context.Background(), nil, 0, Problem{}, Options{}); err != wantErr {
		t.Errorf("Fn error not returned: %v", err)
	}
}
