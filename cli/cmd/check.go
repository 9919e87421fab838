package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/incpath/log"
	"github.com/ardnew/incpath/macro"
)

// Check validates every entry point call site in the given sources without
// writing any output.
type Check struct {
	Quiet bool `help:"Report failures only through the exit status." short:"q"`

	Sources []string `arg:"" default:"-" help:"Source file(s) or '-' for stdin." name:"source"`

	stdout io.Writer
}

// diagStyle renders diagnostics for a terminal.
type diagStyle struct {
	location lipgloss.Style
	message  lipgloss.Style
	snippet  lipgloss.Style
	ok       lipgloss.Style
}

func makeDiagStyle(w io.Writer) diagStyle {
	r := lipgloss.NewRenderer(w)

	return diagStyle{
		location: r.NewStyle().Bold(true),
		message:  r.NewStyle().Foreground(lipgloss.Color("9")),
		snippet:  r.NewStyle().Faint(true),
		ok:       r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// render formats d followed by the offending source line.
func (s diagStyle) render(d *macro.Diagnostic, source string) string {
	loc := d.Pos().String()
	if d.File != "" {
		loc = d.File + ":" + loc
	}

	var sb strings.Builder

	sb.WriteString(s.location.Render(loc + ":"))
	sb.WriteByte(' ')
	sb.WriteString(s.message.Render(d.Message()))
	sb.WriteByte('\n')

	// styled line by line, lipgloss pads multi-line blocks to equal width
	for line := range strings.Lines(d.Snippet(source)) {
		sb.WriteString(s.snippet.Render(strings.TrimSuffix(line, "\n")))
		sb.WriteByte('\n')
	}

	return sb.String()
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context, opts *Options) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := uniqueSources(ctx, c.Sources)
	if err != nil {
		return err
	}

	w := writerOr(c.stdout, os.Stdout)
	style := makeDiagStyle(w)

	var failed, count int

	for _, src := range srcs {
		diags, err := c.check(ctx, opts, src)
		if err != nil {
			return err
		}

		if len(diags.list) == 0 {
			if !c.Quiet {
				fmt.Fprintln(w, style.ok.Render("ok"), src.name(),
					fmt.Sprintf("(%d sites)", diags.sites))
			}

			continue
		}

		failed++
		count += len(diags.list)

		if c.Quiet {
			continue
		}

		for _, d := range diags.list {
			fmt.Fprint(w, style.render(d, diags.source))
		}
	}

	if failed > 0 {
		return ErrCheck.With(
			slog.Int("files", failed),
			slog.Int("diagnostics", count),
		)
	}

	return nil
}

// checked is the outcome of validating one source.
type checked struct {
	source string
	sites  int
	list   macro.Diagnostics
}

func (c *Check) check(ctx context.Context, opts *Options, src source) (checked, error) {
	r, err := src.open()
	if err != nil {
		return checked{}, ErrReadInput.With(slog.String("file", src.name())).Wrap(err)
	}
	defer r.Close()

	data, err := macro.ReadAll(r)
	if err != nil {
		return checked{}, ErrReadInput.With(slog.String("file", src.name())).Wrap(err)
	}

	res := checked{source: string(data)}

	out, err := macro.ExpandSource(ctx, res.source,
		opts.macroOptions(macro.WithFile(src.name()))...)
	if err == nil {
		res.sites = len(out.Sites)

		return res, nil
	}

	if !errors.As(err, &res.list) {
		return checked{}, err
	}

	log.DebugContext(ctx, "check failed",
		slog.String("file", src.name()),
		slog.Any("diagnostics", res.list))

	return res, nil
}
