package store

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type options struct {
	loc   *time.Location
	newID func() string
	log   *zap.Logger
}

// Option configures a store
type Option func(*options)

// WithLocation sets the location used to project instants onto dates
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithIDGenerator replaces the UUIDv4 id generator
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithLogger sets the logger used for load and encode failures
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		loc:   time.Local,
		newID: uuid.NewString,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
