package diastole

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/diastole/internal/runtime"
	"github.com/aretw0/diastole/pkg/algorithms"
	"github.com/aretw0/diastole/pkg/catalog"
	"github.com/aretw0/diastole/pkg/domain"
	"github.com/aretw0/diastole/pkg/ports"
)

// Lister is implemented by algorithm sources that can enumerate their contents.
type Lister interface {
	List() []domain.Metadata
}

// Engine is the high-level entry point for the Diastole library.
// It wraps the internal runtime and provides a simplified API for consumers.
// An Engine holds no session state and is safe for concurrent use.
type Engine struct {
	runtime  *runtime.Engine
	source   ports.AlgorithmSource
	catalog  ports.ResultCatalog
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxChain int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry replaces the built-in algorithms.
func WithRegistry(source ports.AlgorithmSource) Option {
	return func(e *Engine) {
		e.source = source
	}
}

// WithCatalog replaces the built-in result table.
func WithCatalog(c ports.ResultCatalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithMaxChain bounds evaluator chains (default runtime.DefaultMaxChain).
func WithMaxChain(n int) Option {
	return func(e *Engine) {
		e.maxChain = n
	}
}

// New initializes an Engine over the built-in algorithms and result catalog
// unless overridden by options.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.source == nil {
		eng.source = algorithms.Registry()
	}
	if eng.catalog == nil {
		eng.catalog = catalog.Default()
	}
	// Ensure logger is initialized (so we don't pass nil to runtime, which would overwrite its default)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng.runtime = runtime.NewEngine(eng.source,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithMaxChain(eng.maxChain),
	)
	return eng
}

// Algorithms lists metadata of every registered algorithm, or nil when the
// source cannot enumerate.
func (e *Engine) Algorithms() []domain.Metadata {
	if l, ok := e.source.(Lister); ok {
		return l.List()
	}
	return nil
}

// Algorithm returns a registered definition.
func (e *Engine) Algorithm(id string) (*domain.Algorithm, error) {
	return e.source.Get(id)
}

// Catalog returns the result table used to resolve outcomes.
func (e *Engine) Catalog() ports.ResultCatalog { return e.catalog }

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Start creates a fresh state at the entry of an algorithm mode.
func (e *Engine) Start(ctx context.Context, algorithmID, modeID string) (*domain.State, error) {
	return e.runtime.Start(ctx, algorithmID, modeID)
}

// Submit answers the current node of state and returns the next state.
func (e *Engine) Submit(ctx context.Context, state *domain.State, answer string) (*domain.State, error) {
	return e.runtime.Submit(ctx, state, answer)
}

// Back undoes the last user-visible step.
func (e *Engine) Back(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.runtime.Back(ctx, state)
}

// StepBack undoes exactly one history entry.
func (e *Engine) StepBack(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.runtime.StepBack(ctx, state)
}

// Replay rebuilds a state from a transported history.
func (e *Engine) Replay(ctx context.Context, algorithmID, modeID string, history []domain.HistoryEntry) (*domain.State, error) {
	return e.runtime.Replay(ctx, algorithmID, modeID, history)
}

// At returns a state positioned on nodeID, resolving evaluators first.
func (e *Engine) At(ctx context.Context, algorithmID, modeID, nodeID string) (*domain.State, error) {
	return e.runtime.At(ctx, algorithmID, modeID, nodeID)
}

// Render projects the current node, resolving result keys through the catalog.
func (e *Engine) Render(state *domain.State) (*domain.NodeView, error) {
	return e.runtime.Render(state, e.catalog)
}

// Phase reports the externally visible engine state.
func (e *Engine) Phase(state *domain.State) domain.Phase {
	return e.runtime.Phase(state)
}

// Restore rebuilds a deserialized state from its user answers and checks it
// against the snapshot. Failures wrap domain.ErrSerialization.
func (e *Engine) Restore(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.runtime.Restore(ctx, state)
}

// ValidateState checks a deserialized state against its algorithm.
func (e *Engine) ValidateState(state *domain.State) error {
	return e.runtime.ValidateState(state)
}
