package invoker

import (
	"io"
	"log/slog"
)

type options struct {
	logger         *slog.Logger
	recordFailures bool
	maxHistory     int
}

// Option configures an Invoker.
type Option func(*options)

// WithLogger sets the logger used for debug tracing of every transition.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecordFailures controls whether a command whose Execute failed is still
// pushed onto the done stack. Off by default: a failed forward action leaves
// nothing to compensate.
func WithRecordFailures(record bool) Option {
	return func(o *options) {
		o.recordFailures = record
	}
}

// WithMaxHistory caps the done stack. Oldest entries are dropped once the cap
// is exceeded. Zero or a negative value means unbounded.
func WithMaxHistory(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxHistory = n
	}
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
