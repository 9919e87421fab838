package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/incpath/macro"
)

// Scan prints the token stream of a source.
type Scan struct {
	Format string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})." short:"t"`
	Indent int    `default:"2"                          help:"Indent width for JSON and YAML output." short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`

	stdout io.Writer
}

// Run executes the scan command.
func (s *Scan) Run(ctx context.Context, opts *Options) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := uniqueSources(ctx, []string{s.Source})
	if err != nil {
		return err
	}

	r, err := srcs[0].open()
	if err != nil {
		return ErrReadInput.With(slog.String("file", srcs[0].name())).Wrap(err)
	}
	defer r.Close()

	toks, err := macro.ScanReader(ctx, r,
		opts.macroOptions(macro.WithFile(srcs[0].name()))...)
	if err != nil {
		return err
	}

	return s.write(ctx, writerOr(s.stdout, os.Stdout), toks)
}

func (s *Scan) write(ctx context.Context, w io.Writer, toks []macro.Token) error {
	indent := strings.Repeat(" ", max(s.Indent, 0))

	switch s.Format {
	case "json":
		var (
			data []byte
			err  error
		)

		if indent != "" {
			data, err = json.MarshalIndent(toks, "", indent)
		} else {
			data, err = json.Marshal(toks)
		}

		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case "yaml":
		var yopts []yaml.EncodeOption
		if s.Indent > 0 {
			yopts = append(yopts, yaml.Indent(s.Indent))
		}

		data, err := yaml.MarshalContext(ctx, toks, yopts...)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err

	default:
		for _, line := range tokenLines(toks) {
			_, err := fmt.Fprintln(w, line)
			if err != nil {
				return err
			}
		}

		return nil
	}
}

// tokenLines renders one "line:column<TAB>kind<TAB>text" line per token.
func tokenLines(toks []macro.Token) []string {
	lines := make([]string, 0, len(toks))

	for _, tok := range toks {
		lines = append(lines, strings.Join([]string{
			tok.Pos.String(),
			tok.Kind.String(),
			tok.Text,
		}, "\t"))
	}

	return lines
}
