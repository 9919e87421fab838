package macro

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
)

// Site records one expanded call site.
type Site struct {
	Entry    Entry    `json:"entry"    yaml:"entry"`
	Segments []string `json:"segments" yaml:"segments"`
	Expr     Expr     `json:"expr"     yaml:"expr"`
	Pos      Position `json:"pos"      yaml:"pos"`
	End      Position `json:"end"      yaml:"end"`
}

// Result is the outcome of expanding a source.
type Result struct {
	Output string
	Sites  []Site
}

// ExpandReader reads all of r and expands it with [ExpandSource].
func ExpandReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Result, error) {
	data, err := ReadAll(r)
	if err != nil {
		return nil, err
	}

	return ExpandSource(ctx, string(data), opts...)
}

// ExpandSource rewrites every call site of the configured entry points in
// source.
//
// A call site is an identifier naming an entry point immediately followed by
// a parenthesized argument list. Text outside call sites is preserved byte
// for byte. Call sites are expanded independently; if any of them fails, the
// returned error is a [Diagnostics] holding one diagnostic per failing call
// site and no output is produced. An invalid entry configuration fails with
// [ErrInvalidEntry] before scanning.
func ExpandSource(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Result, error) {
	cfg := makeConfig(opts...)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	toks, err := Scan(ctx, source, opts...)
	if err != nil {
		return nil, Diagnostics{asDiagnostic(err)}
	}

	var (
		out   strings.Builder
		res   Result
		diags Diagnostics
		last  int // offset of the first byte not yet copied to out
	)

	for i := 0; i < len(toks); i++ {
		entry, ok := cfg.callee(toks, i)
		if !ok {
			continue
		}

		args, end, derr := collectArgs(toks, i+1)
		if derr != nil {
			derr.File = cfg.file
			diags = append(diags, derr)

			break // nothing after an unbalanced list can be trusted
		}

		site, serr := cfg.expandSite(ctx, entry, toks[i], args, toks[end])
		if serr != nil {
			diags = append(diags, serr)
		} else {
			out.WriteString(source[last:site.Pos.Offset])
			out.WriteString(site.Expr.String())

			last = site.End.Offset

			res.Sites = append(res.Sites, site)
		}

		i = end
	}

	if len(diags) > 0 {
		cfg.logger.DebugContext(ctx, "expansion failed",
			slog.String("file", cfg.file),
			slog.Int("diagnostics", len(diags)))

		return nil, diags
	}

	out.WriteString(source[last:])
	res.Output = out.String()

	cfg.logger.TraceContext(ctx, "expansion complete",
		slog.String("file", cfg.file),
		slog.Int("sites", len(res.Sites)))

	return &res, nil
}

// ExpandArgs expands a single argument list written as source text, such as
// `"dir", "file.txt"`, for the entry point named entry.
func ExpandArgs(
	ctx context.Context,
	entry, args string,
	opts ...Option,
) (Expr, error) {
	cfg := makeConfig(opts...)

	e, err := LookupEntry(entry, opts...)
	if err != nil {
		return Expr{}, err
	}

	toks, err := Scan(ctx, args, opts...)
	if err != nil {
		return Expr{}, err
	}

	grouped, derr := groupTokens(toks)
	if derr != nil {
		derr.File = cfg.file

		return Expr{}, derr
	}

	expr, err := e.Expand(grouped, cfg.family)
	if err != nil {
		d := asDiagnostic(err)
		d.File = cfg.file

		return Expr{}, d
	}

	return expr, nil
}

// callee reports whether toks[i] starts a call of a configured entry point.
func (c config) callee(toks []Token, i int) (Entry, bool) {
	if toks[i].Kind != KindIdent || i+1 >= len(toks) || !toks[i+1].IsPunct('(') {
		return Entry{}, false
	}

	j := slices.IndexFunc(c.entries, func(e Entry) bool {
		return e.Name == toks[i].Text
	})
	if j < 0 {
		return Entry{}, false
	}

	return c.entries[j], true
}

// expandSite expands one call site spanning ident through closer.
func (c config) expandSite(
	ctx context.Context,
	entry Entry,
	ident Token,
	args []Token,
	closer Token,
) (Site, *Diagnostic) {
	segments, err := Extract(args)
	if err != nil {
		d := asDiagnostic(err)
		d.File = c.file

		c.logger.TraceContext(ctx, "call site rejected",
			slog.String("entry", entry.Name),
			slog.Any("diagnostic", d))

		return Site{}, d
	}

	site := Site{
		Entry:    entry,
		Segments: segments,
		Expr:     Rewrite(entry.Primitive, c.family, segments...),
		Pos:      ident.Pos,
		End:      closer.End,
	}

	c.logger.TraceContext(ctx, "call site expanded",
		slog.String("entry", entry.Name),
		slog.String("position", site.Pos.String()),
		slog.String("expr", site.Expr.String()))

	return site, nil
}

// collectArgs collects the arguments of the list opened by toks[open], which
// must be '('. Nested delimited groups are collapsed into single KindGroup
// tokens. It returns the arguments and the index of the closing ')'.
func collectArgs(toks []Token, open int) ([]Token, int, *Diagnostic) {
	var args []Token

	for i := open + 1; i < len(toks); i++ {
		tok := toks[i]

		switch {
		case tok.IsPunct(')'):
			return args, i, nil

		case tok.Kind == KindPunct && isCloser([]rune(tok.Text)[0]):
			return nil, 0, newDiagnostic(ViolationPunct, tok)

		case tok.Kind == KindPunct && closer([]rune(tok.Text)[0]) != 0:
			group, end, err := collectGroup(toks, i)
			if err != nil {
				return nil, 0, err
			}

			args = append(args, group)
			i = end

		default:
			args = append(args, tok)
		}
	}

	return nil, 0, newDiagnostic(ViolationUnterminated, toks[open])
}

// collectGroup collapses the delimited group opened by toks[open] into one
// token and returns the index of its closing delimiter.
func collectGroup(toks []Token, open int) (Token, int, *Diagnostic) {
	delim := []rune(toks[open].Text)[0]
	want := closer(delim)

	var children []Token

	for i := open + 1; i < len(toks); i++ {
		tok := toks[i]
		if tok.Kind != KindPunct {
			children = append(children, tok)

			continue
		}

		r := []rune(tok.Text)[0]

		switch {
		case r == want:
			group := GroupToken(delim, children...)
			group.Pos = toks[open].Pos
			group.End = tok.End

			return group, i, nil

		case isCloser(r):
			return Token{}, 0, newDiagnostic(ViolationPunct, tok)

		case closer(r) != 0:
			inner, end, err := collectGroup(toks, i)
			if err != nil {
				return Token{}, 0, err
			}

			children = append(children, inner)
			i = end

		default:
			children = append(children, tok)
		}
	}

	return Token{}, 0, newDiagnostic(ViolationUnterminated, toks[open])
}

// groupTokens collapses every delimited group of a free-standing token
// stream.
func groupTokens(toks []Token) ([]Token, *Diagnostic) {
	// Wrap in a synthetic list so collectArgs can find a closer.
	wrapped := make([]Token, 0, len(toks)+2)
	wrapped = append(wrapped, PunctToken('('))
	wrapped = append(wrapped, toks...)
	wrapped = append(wrapped, PunctToken(')'))

	args, end, err := collectArgs(wrapped, 0)
	if err != nil {
		return nil, err
	}

	if end != len(wrapped)-1 {
		// A stray ')' closed the synthetic list early.
		return nil, newDiagnostic(ViolationPunct, wrapped[end])
	}

	return args, nil
}

func asDiagnostic(err error) *Diagnostic {
	if d, ok := err.(*Diagnostic); ok {
		return d
	}

	return &Diagnostic{Kind: ViolationLexical, Detail: err.Error()}
}
