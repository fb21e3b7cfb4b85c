package ffalloc

import (
	"ffalloc/freelist"

	"golang.org/x/exp/slog"
)

// Carve selects which end of the first fitting free block an allocation is cut from.
type Carve = freelist.Carve

const (
	// CarveFront places an allocation at the start of the free block it is cut from.
	CarveFront = freelist.Front
	// CarveBack places an allocation at the end of the free block it is cut from.
	CarveBack  = freelist.Back
)

type options struct {
	locking bool
	carve   Carve
	logger  *slog.Logger
}

func defaultOptions() options {
	return options{
		locking: true,
		carve:   CarveFront,
		logger:  discardLogger,
	}
}

// Option configures an Allocator.
type Option func(*options)

// WithLocking turns the allocator-wide lock on or off. With locking off the
// Allocator must only be used from one goroutine.
func WithLocking(on bool) Option {
	return func(o *options) {
		o.locking = on
	}
}

// WithCarve sets the end of a free block allocations are cut from. Defaults to CarveFront.
func WithCarve(c Carve) Option {
	return func(o *options) {
		o.carve = c
	}
}

// WithLogger sets the logger receiving debug records for every operation.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
