package newton

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultAlgorithm is the canonical engine name.
const DefaultAlgorithm = "recursive"

// EngineFactory creates and caches Engine instances by name.
type EngineFactory interface {
	// Create returns a fresh Engine, bypassing the cache.
	Create(name string) (Engine, error)
	// Get returns the cached Engine for name, creating it on first use.
	Get(name string) (Engine, error)
	// List returns the registered names in sorted order.
	List() []string
	// Register adds or replaces a strategy.
	Register(name string, creator func() coreEngine) error
	// GetAll returns every registered engine.
	GetAll() map[string]Engine
}

// DefaultFactory is the thread-safe EngineFactory used by the application.
type DefaultFactory struct {
	mu       sync.RWMutex
	creators map[string]func() coreEngine
	engines  map[string]Engine
}

// NewDefaultFactory returns a factory with the built-in strategies:
//   - "recursive": RecursiveStrategy (canonical)
//   - "logderiv": LogDerivativeStrategy
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators: make(map[string]func() coreEngine),
		engines:  make(map[string]Engine),
	}

	_ = f.Register(DefaultAlgorithm, func() coreEngine { return &RecursiveStrategy{} })
	_ = f.Register("logderiv", func() coreEngine { return &LogDerivativeStrategy{} })

	return f
}

// Register adds a strategy under name, replacing any previous one.
func (f *DefaultFactory) Register(name string, creator func() coreEngine) error {
	if creator == nil {
		return fmt.Errorf("newton: nil creator for engine %q", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creators[name] = creator
	delete(f.engines, name)
	return nil
}

// Create builds a new Engine without touching the cache.
func (f *DefaultFactory) Create(name string) (Engine, error) {
	f.mu.RLock()
	creator, ok := f.creators[name]
	f.mu.RUnlock()

	if !ok {
		return nil, &UnknownEngineError{Name: name}
	}
	return NewEngine(creator()), nil
}

// Get returns the cached Engine for name.
func (f *DefaultFactory) Get(name string) (Engine, error) {
	f.mu.RLock()
	if engine, exists := f.engines[name]; exists {
		f.mu.RUnlock()
		return engine, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if engine, exists := f.engines[name]; exists {
		return engine, nil
	}
	creator, ok := f.creators[name]
	if !ok {
		return nil, &UnknownEngineError{Name: name}
	}
	engine := NewEngine(creator())
	f.engines[name] = engine
	return engine, nil
}

// List returns the registered names, sorted.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll initializes every registered engine and returns a copy of the cache.
func (f *DefaultFactory) GetAll() map[string]Engine {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, creator := range f.creators {
		if _, exists := f.engines[name]; !exists {
			f.engines[name] = NewEngine(creator())
		}
	}

	result := make(map[string]Engine, len(f.engines))
	for name, engine := range f.engines {
		result[name] = engine
	}
	return result
}

// Has reports whether name is registered.
func (f *DefaultFactory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, exists := f.creators[name]
	return exists
}

var globalFactory = NewDefaultFactory()

// GlobalFactory returns the process-wide factory.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}

// UnknownEngineError is returned when no engine is registered under Name.
type UnknownEngineError struct {
	Name string
}

func (e *UnknownEngineError) Error() string {
	return "unknown engine: " + e.Name
}
