package macro

import "github.com/ardnew/incpath/log"

// Option configures scanning and expansion.
type Option func(config) config

// config holds the effective options of a single call.
type config struct {
	logger  log.Logger // structured logger, zero value is a no-op
	file    string     // name reported in diagnostics
	family  Family
	entries []Entry
}

// makeConfig applies opts over the defaults.
func makeConfig(opts ...Option) config {
	c := config{
		family:  HostFamily,
		entries: DefaultEntries(),
	}

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c config) config {
		c.logger = logger

		return c
	}
}

// WithFile sets the file name attached to diagnostics.
func WithFile(name string) Option {
	return func(c config) config {
		c.file = name

		return c
	}
}

// WithFamily selects the platform family whose separator joins segments.
// The default is [HostFamily].
func WithFamily(f Family) Option {
	return func(c config) config {
		c.family = f

		return c
	}
}

// WithEntries replaces the set of recognized entry points.
func WithEntries(entries ...Entry) Option {
	return func(c config) config {
		c.entries = entries

		return c
	}
}

// WithPrimitive overrides the primitive that entry points of the given kind
// expand into.
func WithPrimitive(kind EntryKind, primitive string) Option {
	return func(c config) config {
		if primitive == "" {
			return c
		}

		entries := make([]Entry, len(c.entries))
		copy(entries, c.entries)

		for i := range entries {
			if entries[i].Kind == kind {
				entries[i].Primitive = primitive
			}
		}

		c.entries = entries

		return c
	}
}
