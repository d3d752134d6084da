package minimeta

import "go.uber.org/zap"

// Options configures a Builder and the Registry it produces.
type Options struct {
	// Logger receives registration events at Debug level. Codec calls never
	// log. Defaults to a no-op logger.
	Logger *zap.Logger
	// MaxDepth bounds the nesting depth of values during decoding.
	// Zero disables the check.
	MaxDepth int
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	return o
}

// RegisterOpt adjusts a single registration.
type RegisterOpt func(*registration)

// WithName registers the type under name instead of its package-qualified
// Go name. Identity and schema version derive from this name, so it lets a
// type keep its identity across package moves or renames.
func WithName(name string) RegisterOpt {
	return func(r *registration) {
		if name != "" {
			r.name = name
		}
	}
}
