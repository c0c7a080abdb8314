package newton

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

// ─────────────────────────────────────────────────────────────────────────────
// ProgressSubject Tests
// ─────────────────────────────────────────────────────────────────────────────

type recordingObserver struct {
	mu      sync.Mutex
	updates []ProgressUpdate
}

func (r *recordingObserver) Update(engineIndex int, progress float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, ProgressUpdate{EngineIndex: engineIndex, Value: progress})
}

func (r *recordingObserver) snapshot() []ProgressUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProgressUpdate(nil), r.updates...)
}

func TestProgressSubject_RegisterUnregister(t *testing.T) {
	t.Parallel()

	subject := NewProgressSubject()
	subject.Register(nil)
	if subject.ObserverCount() != 0 {
		t.Fatalf("registering nil added an observer")
	}

	a, b := &recordingObserver{}, &recordingObserver{}
	subject.Register(a)
	subject.Register(b)
	if subject.ObserverCount() != 2 {
		t.Fatalf("expected 2 observers, got %d", subject.ObserverCount())
	}

	subject.Unregister(nil)
	subject.Unregister(a)
	subject.Unregister(a)
	if subject.ObserverCount() != 1 {
		t.Errorf("expected 1 observer, got %d", subject.ObserverCount())
	}

	subject.Notify(3, 0.5)
	if len(a.snapshot()) != 0 {
		t.Errorf("unregistered observer still notified")
	}
	if got := b.snapshot(); len(got) != 1 || got[0] != (ProgressUpdate{EngineIndex: 3, Value: 0.5}) {
		t.Errorf("observer b got %v", got)
	}
}

func TestProgressSubject_AsProgressReporter(t *testing.T) {
	t.Parallel()

	subject := NewProgressSubject()
	obs := &recordingObserver{}
	subject.Register(obs)

	report := subject.AsProgressReporter(7)
	report(0.25)
	report(1.0)

	got := obs.snapshot()
	if len(got) != 2 || got[0].EngineIndex != 7 || got[1].Value != 1.0 {
		t.Errorf("updates = %v", got)
	}
}

func TestProgressSubject_ConcurrentNotify(t *testing.T) {
	t.Parallel()

	subject := NewProgressSubject()
	obs := &recordingObserver{}
	subject.Register(obs)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				subject.Notify(idx, float64(j)/100)
			}
		}(i)
	}
	wg.Wait()

	if n := len(obs.snapshot()); n != 800 {
		t.Errorf("expected 800 updates, got %d", n)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Observer Implementations
// ─────────────────────────────────────────────────────────────────────────────

func TestChannelObserver(t *testing.T) {
	t.Parallel()

	t.Run("clamps and forwards", func(t *testing.T) {
		t.Parallel()
		ch := make(chan ProgressUpdate, 2)
		obs := NewChannelObserver(ch)
		obs.Update(1, 1.5)
		got := <-ch
		if got.EngineIndex != 1 || got.Value != 1.0 {
			t.Errorf("got %+v, want {1 1}", got)
		}
	})

	t.Run("drops when full", func(t *testing.T) {
		t.Parallel()
		ch := make(chan ProgressUpdate, 1)
		obs := NewChannelObserver(ch)
		obs.Update(0, 0.1)
		obs.Update(0, 0.2)
		if len(ch) != 1 {
			t.Errorf("channel holds %d updates, want 1", len(ch))
		}
	})

	t.Run("nil channel", func(t *testing.T) {
		t.Parallel()
		NewChannelObserver(nil).Update(0, 0.5)
	})
}

func TestLoggingObserver_Throttles(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	obs := NewLoggingObserver(logger, 0.25)

	for _, p := range []float64{0.05, 0.1, 0.2, 0.31, 0.4, 0.6, 1.0} {
		obs.Update(0, p)
	}

	lines := strings.Count(buf.String(), "iteration progress")
	// 0.05 (first), 0.31, 0.6, 1.0
	if lines != 4 {
		t.Errorf("logged %d lines, want 4:\n%s", lines, buf.String())
	}
}

func TestLoggingObserver_DefaultThreshold(t *testing.T) {
	t.Parallel()

	obs := NewLoggingObserver(zerolog.Nop(), 0)
	if obs.threshold != 0.1 {
		t.Errorf("threshold = %v, want 0.1", obs.threshold)
	}
}

func TestMetricsObserver(t *testing.T) {
	obs := NewMetricsObserver()
	obs.ResetMetrics()
	obs.Update(4, 0.75)

	if got := testutil.ToFloat64(progressGauge.WithLabelValues("4")); got != 0.75 {
		t.Errorf("gauge = %v, want 0.75", got)
	}
	obs.ResetMetrics()
	if n := testutil.CollectAndCount(progressGauge); n != 0 {
		t.Errorf("gauge series after reset = %d, want 0", n)
	}
}

func TestNoOpObserver(t *testing.T) {
	t.Parallel()
	NewNoOpObserver().Update(0, 1)
}
