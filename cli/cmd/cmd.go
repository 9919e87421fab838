package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/incpath/log"
	"github.com/ardnew/incpath/macro"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// writerOr returns w, or def if w is nil.
func writerOr(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}

	return w
}

// Options holds the global flags that shape every expansion.
type Options struct {
	Family          string `default:"${hostFamily}"                 enum:"${familyEnum}" help:"Platform family that selects the path separator." short:"F"`
	PrimitiveSource string `default:"${primitiveSource}" group:"macro"                   help:"Primitive that replaces ${loadPath}."`
	PrimitiveBytes  string `default:"${primitiveBytes}"  group:"macro"                   help:"Primitive that replaces ${loadPathBytes}."`
	PrimitiveText   string `default:"${primitiveText}"   group:"macro"                   help:"Primitive that replaces ${loadPathStr}."`
}

// Vars returns the kong variables referenced by the [Options] struct tags.
func (Options) Vars() kong.Vars {
	return kong.Vars{
		"hostFamily":      macro.HostFamily.String(),
		"familyEnum":      strings.Join(slices.Collect(macro.Families()), ","),
		"loadPath":        macro.LoadPath,
		"loadPathBytes":   macro.LoadPathBytes,
		"loadPathStr":     macro.LoadPathStr,
		"primitiveSource": macro.Include,
		"primitiveBytes":  macro.IncludeBytes,
		"primitiveText":   macro.IncludeStr,
		"jobs":            strconv.Itoa(runtime.NumCPU()),
	}
}

// macroOptions translates the flags into options for the macro package.
// Extra options are applied last.
func (o *Options) macroOptions(extra ...macro.Option) []macro.Option {
	opts := []macro.Option{
		macro.WithLogger(log.Default()),
		macro.WithFamily(macro.ParseFamily(o.Family)),
	}

	for kind, primitive := range map[macro.EntryKind]string{
		macro.EntrySource: o.PrimitiveSource,
		macro.EntryBytes:  o.PrimitiveBytes,
		macro.EntryText:   o.PrimitiveText,
	} {
		if primitive != "" {
			opts = append(opts, macro.WithPrimitive(kind, primitive))
		}
	}

	return append(opts, extra...)
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// source is one input named on the command line.
type source struct {
	path string
	info os.FileInfo // nil for stdin
}

// name returns the name reported in diagnostics.
func (s source) name() string {
	if s.info == nil {
		return "<stdin>"
	}

	return s.path
}

// open returns a reader for the source content.
func (s source) open() (io.ReadCloser, error) {
	if s.info == nil {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(s.path)
}

// uniqueSources resolves paths into sources, dropping files already named
// through another path (symlinks, relative and absolute spellings).
// Every "-" collapses into a single stdin source placed last.
func uniqueSources(ctx context.Context, paths []string) ([]source, error) {
	var (
		srcs  []source
		stdin bool
	)

	for _, path := range paths {
		if path == stdinSource {
			stdin = true

			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, ErrReadInput.
				With(slog.String("file", path)).
				Wrap(err)
		}

		if slices.ContainsFunc(srcs, func(s source) bool {
			return os.SameFile(s.info, info)
		}) {
			log.DebugContext(ctx, "skipping duplicate source",
				slog.String("file", path))

			continue
		}

		srcs = append(srcs, source{path: filepath.Clean(path), info: info})
	}

	if stdin {
		srcs = append(srcs, source{path: stdinSource})
	}

	if len(srcs) == 0 {
		return nil, ErrNoSources
	}

	return srcs, nil
}
