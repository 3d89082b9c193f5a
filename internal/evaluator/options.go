package evaluator

import (
	"log/slog"
	"time"
)

// DefaultDebounce is the quiet period applied when no option overrides it.
const DefaultDebounce = 300 * time.Millisecond

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithDebounce sets how long a node must stay quiet after a trigger before it
// is evaluated. Zero evaluates immediately.
func WithDebounce(d time.Duration) Option {
	return func(e *Evaluator) {
		e.debounce = d
	}
}

// WithAsyncTimeout bounds every asynchronous call. Zero means no bound.
func WithAsyncTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		e.asyncTimeout = d
	}
}

// WithLogger sets the logger used when Run is given a context without one.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}
