package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/diastole/internal/logging"
	"github.com/aretw0/diastole/pkg/domain"
	"github.com/aretw0/diastole/pkg/ports"
)

// DefaultMaxChain bounds how many evaluators a single operation may resolve in a row.
const DefaultMaxChain = 32

// Engine is the stateless navigation core. It is safe for concurrent use:
// every operation clones its input state and only the clone is mutated.
type Engine struct {
	source   ports.AlgorithmSource
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxChain int
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for evaluator tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxChain overrides the evaluator chain budget. Values below 1 are ignored.
func WithMaxChain(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxChain = n
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine over an algorithm source.
func NewEngine(source ports.AlgorithmSource, opts ...Option) *Engine {
	e := &Engine{
		source:   source,
		logger:   logging.NewNop(),
		maxChain: DefaultMaxChain,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ ports.StatelessEngine = (*Engine)(nil)
