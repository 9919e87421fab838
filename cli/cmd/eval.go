package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/incpath/macro"
)

// maxSuggestions limits the entry names suggested for a misspelled entry.
const maxSuggestions = 3

// Eval expands a single call written on the command line and prints the
// rewritten expression.
//
//	incpath eval load_path_str '"assets", "logo.svg"'
type Eval struct {
	Entry string   `arg:"" help:"Entry point to expand (${loadPath}, ${loadPathBytes} or ${loadPathStr})." name:"entry"`
	Args  []string `arg:"" help:"Argument list source, joined by spaces."                                   name:"args" optional:""`

	stdout io.Writer
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context, opts *Options) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	mopts := opts.macroOptions(macro.WithFile("<args>"))

	expr, err := macro.ExpandArgs(ctx, e.Entry, strings.Join(e.Args, " "), mopts...)
	if err != nil {
		if errors.Is(err, macro.ErrUnknownEntry) {
			if hint := suggest(e.Entry, macro.EntryNames(mopts...)); len(hint) > 0 {
				return ErrEval.
					With(slog.Any("did_you_mean", hint)).
					Wrap(err)
			}
		}

		return ErrEval.With(slog.String("entry", e.Entry)).Wrap(err)
	}

	_, err = fmt.Fprintln(writerOr(e.stdout, os.Stdout), expr.String())
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// suggest returns the candidates that fuzzily match name, best first.
func suggest(name string, candidates []string) []string {
	matches := fuzzy.Find(name, candidates)

	hint := make([]string, 0, min(len(matches), maxSuggestions))
	for _, m := range matches[:cap(hint)] {
		hint = append(hint, m.Str)
	}

	return hint
}
