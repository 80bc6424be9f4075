package logtower

import (
	"io"

	"github.com/charmbracelet/log"
)

// DefaultThreshold is the highest degree computed by the closed double sum.
// Degrees above it use the recursive convolution.
const DefaultThreshold = 5

// Option configures an Engine. Invalid values are programmer errors and panic.
type Option func(*Engine)

// WithThreshold sets the dispatch threshold T. Degrees n <= T use the closed
// form. T = -1 routes every degree through the convolution.
func WithThreshold(t int) Option {
	if t < -1 {
		panic("logtower: threshold must be >= -1")
	}
	return func(e *Engine) { e.threshold = t }
}

// WithLogger sets the logger used for per-degree debug records.
func WithLogger(l *log.Logger) Option {
	if l == nil {
		panic("logtower: nil logger")
	}
	return func(e *Engine) { e.log = l }
}

// WithCache makes the engine use c instead of a private cache. The cache is
// bound to the F and G it was filled for and resets itself when a call
// supplies a different pair. A GammaCache is not safe for concurrent use.
func WithCache(c *GammaCache) Option {
	if c == nil {
		panic("logtower: nil cache")
	}
	return func(e *Engine) { e.cache = c }
}

func discardLogger() *log.Logger { return log.New(io.Discard) }
