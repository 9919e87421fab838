package macro

import (
	"errors"
	"log/slog"
	"slices"
	"strings"
)

// EntryKind identifies which load primitive an entry point delegates to.
type EntryKind int

const (
	// EntrySource loads a file's contents as source code.
	EntrySource EntryKind = iota

	// EntryBytes loads a file's contents as a byte array.
	EntryBytes

	// EntryText loads a file's contents as a text string.
	EntryText
)

// String returns a string representation of the entry kind.
func (k EntryKind) String() string {
	switch k {
	case EntrySource:
		return "source"
	case EntryBytes:
		return "bytes"
	case EntryText:
		return "text"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EntryKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Entry is a call-site entry point and the primitive it rewrites into.
type Entry struct {
	Name      string    `json:"name"      yaml:"name"`
	Primitive string    `json:"primitive" yaml:"primitive"`
	Kind      EntryKind `json:"kind"      yaml:"kind"`
}

// Default entry point and primitive names.
const (
	LoadPath      = "load_path"
	LoadPathBytes = "load_path_bytes"
	LoadPathStr   = "load_path_str"

	Include      = "include"
	IncludeBytes = "include_bytes"
	IncludeStr   = "include_str"
)

// DefaultEntries returns the three standard entry points.
func DefaultEntries() []Entry {
	return []Entry{
		{Name: LoadPath, Primitive: Include, Kind: EntrySource},
		{Name: LoadPathBytes, Primitive: IncludeBytes, Kind: EntryBytes},
		{Name: LoadPathStr, Primitive: IncludeStr, Kind: EntryText},
	}
}

// LookupEntry returns the entry named name from the entries configured by
// opts.
func LookupEntry(name string, opts ...Option) (Entry, error) {
	cfg := makeConfig(opts...)

	if err := cfg.validate(); err != nil {
		return Entry{}, err
	}

	i := slices.IndexFunc(cfg.entries, func(e Entry) bool {
		return e.Name == name
	})
	if i < 0 {
		return Entry{}, ErrUnknownEntry.With(slog.String("name", name))
	}

	return cfg.entries[i], nil
}

// validate rejects an entry without a name or primitive, and a name
// configured twice.
func (c config) validate() error {
	seen := make(map[string]bool, len(c.entries))

	for _, e := range c.entries {
		attrs := []slog.Attr{
			slog.String("name", e.Name),
			slog.String("primitive", e.Primitive),
		}

		switch {
		case e.Name == "":
			return ErrInvalidEntry.With(attrs...).Wrap(errors.New("empty name"))
		case e.Primitive == "":
			return ErrInvalidEntry.With(attrs...).Wrap(errors.New("empty primitive"))
		case seen[e.Name]:
			return ErrInvalidEntry.With(attrs...).Wrap(errors.New("duplicate name"))
		}

		seen[e.Name] = true
	}

	return nil
}

// EntryNames returns the names of the entries configured by opts.
func EntryNames(opts ...Option) []string {
	cfg := makeConfig(opts...)

	names := make([]string, len(cfg.entries))
	for i, e := range cfg.entries {
		names[i] = e.Name
	}

	return names
}

// Join concatenates segments with the separator of family f.
// No escaping, normalization or dot-segment resolution is performed.
func Join(f Family, segments ...string) string {
	return strings.Join(segments, f.Separator())
}

// Expr is the expression that replaces a call site: a call of Primitive with
// a single string literal argument holding Path.
type Expr struct {
	Primitive string `json:"primitive" yaml:"primitive"`
	Path      string `json:"path"      yaml:"path"`
}

// Rewrite joins segments with the separator of f and wraps the result in a
// call of primitive.
func Rewrite(primitive string, f Family, segments ...string) Expr {
	return Expr{Primitive: primitive, Path: Join(f, segments...)}
}

// Tokens returns the expression as a token stream: the primitive identifier
// followed by one parenthesized group holding the path literal.
func (e Expr) Tokens() []Token {
	return []Token{
		IdentToken(e.Primitive),
		GroupToken('(', StringToken(e.Path)),
	}
}

// String renders the expression as source text.
func (e Expr) String() string {
	return e.Primitive + "(" + Quote(e.Path) + ")"
}

// Expand validates the argument tokens of a call site and returns the
// rewritten expression. On failure the expression is zero and the error is a
// *Diagnostic.
func (e Entry) Expand(args []Token, f Family) (Expr, error) {
	segments, err := Extract(args)
	if err != nil {
		return Expr{}, err
	}

	return Rewrite(e.Primitive, f, segments...), nil
}
