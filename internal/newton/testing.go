package newton

import (
	"context"
	"sort"
)

// MockEngine is an Engine returning canned values, for tests in other
// packages.
type MockEngine struct {
	EngineName string
	Result     Result
	Err        error
	Fn         func(ctx context.Context, p Problem) (Result, error)
}

// Name returns EngineName, or "mock" when unset.
func (m *MockEngine) Name() string {
	if m.EngineName == "" {
		return "mock"
	}
	return m.EngineName
}

// Iterate returns Fn's output when set, or the canned Result and Err.
// opts.Observers are told the run is complete either way.
func (m *MockEngine) Iterate(ctx context.Context, progressChan chan<- ProgressUpdate, engineIndex int, p Problem, opts Options) (Result, error) {
	for _, o := range opts.Observers {
		if o != nil {
			o.Update(engineIndex, 1.0)
		}
	}
	if m.Fn != nil {
		return m.Fn(ctx, p)
	}
	if progressChan != nil {
		progressChan <- ProgressUpdate{EngineIndex: engineIndex, Value: 1.0}
	}
	return m.Result, m.Err
}

// TestFactory is an EngineFactory over a fixed set of engines.
type TestFactory struct {
	engines map[string]Engine
}

// NewTestFactory returns a factory serving engines.
func NewTestFactory(engines map[string]Engine) *TestFactory {
	if engines == nil {
		engines = make(map[string]Engine)
	}
	return &TestFactory{engines: engines}
}

// Create returns the engine registered under name.
func (f *TestFactory) Create(name string) (Engine, error) {
	return f.Get(name)
}

// Get returns the engine registered under name.
func (f *TestFactory) Get(name string) (Engine, error) {
	engine, ok := f.engines[name]
	if !ok {
		return nil, &UnknownEngineError{Name: name}
	}
	return engine, nil
}

// List returns the registered names, sorted.
func (f *TestFactory) List() []string {
	names := make([]string, 0, len(f.engines))
	for name := range f.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register is a no-op: engines are fixed at construction.
func (f *TestFactory) Register(string, func() coreEngine) error {
	return nil
}

// GetAll returns a copy of the engine map.
func (f *TestFactory) GetAll() map[string]Engine {
	result := make(map[string]Engine, len(f.engines))
	for k, v := range f.engines {
		result[k] = v
	}
	return result
}
