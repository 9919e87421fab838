package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/incpath/log"
	"github.com/ardnew/incpath/macro"
)

// defaultOutputDirMode is the permission mode of a created output directory.
const defaultOutputDirMode os.FileMode = 0o755

// Expand rewrites every entry point call site in the given sources.
//
// A source named "file.rs.in" (with the default suffix) is written to
// "file.rs" next to it, or into --output-dir when given. A source without the
// suffix is written to stdout, or under its own name into --output-dir. Stdin
// has no name and is always written to stdout.
type Expand struct {
	Suffix    string `default:".in"     help:"Suffix removed from a source name to form its output name."              short:"x"`
	OutputDir string `                  help:"Directory receiving the outputs (created if missing)." placeholder:"DIR" short:"o" type:"path"`
	Jobs      int    `default:"${jobs}" help:"Maximum number of sources expanded concurrently."                       short:"j"`
	Stdout    bool   `                  help:"Write every output to stdout in source order."                          short:"c"`
	Force     bool   `                  help:"Rewrite outputs even when their content is unchanged."                 short:"f"`

	Sources []string `arg:"" default:"-" help:"Source file(s) or '-' for stdin." name:"source"`

	stdout io.Writer
}

// expansion is the outcome of expanding one source.
type expansion struct {
	src    source
	target string // "" for stdout
	output string
	err    error
}

// Run executes the expand command.
func (e *Expand) Run(ctx context.Context, opts *Options) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := uniqueSources(ctx, e.Sources)
	if err != nil {
		return err
	}

	if e.OutputDir != "" && !e.Stdout {
		err = os.MkdirAll(e.OutputDir, defaultOutputDirMode)
		if err != nil {
			return ErrWriteOutput.
				With(slog.String("dir", e.OutputDir)).
				Wrap(err)
		}
	}

	results := make([]expansion, len(srcs))

	var grp errgroup.Group

	grp.SetLimit(max(e.Jobs, 1))

	for i, src := range srcs {
		grp.Go(func() error {
			if err := context.Cause(ctx); err != nil {
				results[i] = expansion{src: src, err: err}

				return nil
			}

			results[i] = e.expand(ctx, opts, src)

			return nil
		})
	}

	_ = grp.Wait()

	w := writerOr(e.stdout, os.Stdout)

	var errs []error

	for _, res := range results {
		if res.err != nil {
			log.ErrorContext(ctx, "expand failed",
				slog.String("file", res.src.name()),
				slog.Any("error", res.err))

			errs = append(errs, res.err)

			continue
		}

		if res.target != "" {
			continue
		}

		_, err = io.WriteString(w, res.output)
		if err != nil {
			return ErrWriteOutput.
				With(slog.String("file", "<stdout>")).
				Wrap(err)
		}
	}

	if len(errs) > 0 {
		return ErrExpand.
			With(slog.Int("failed", len(errs)), slog.Int("total", len(srcs))).
			Wrap(errors.Join(errs...))
	}

	return nil
}

// expand reads and expands a single source. Outputs bound for a file are
// written before returning; stdout outputs are left to the caller so that
// they appear in source order.
func (e *Expand) expand(ctx context.Context, opts *Options, src source) expansion {
	res := expansion{src: src}

	res.target, res.err = e.target(src)
	if res.err != nil {
		return res
	}

	r, err := src.open()
	if err != nil {
		res.err = ErrReadInput.With(slog.String("file", src.name())).Wrap(err)

		return res
	}
	defer r.Close()

	out, err := macro.ExpandReader(ctx, r,
		opts.macroOptions(macro.WithFile(src.name()))...)
	if err != nil {
		res.err = err

		return res
	}

	res.output = out.Output

	log.DebugContext(ctx, "expanded source",
		slog.String("file", src.name()),
		slog.Int("sites", len(out.Sites)),
		slog.String("size", humanize.IBytes(uint64(len(out.Output)))))

	if res.target == "" {
		return res
	}

	mode := os.FileMode(0o644)
	if src.info != nil {
		mode = src.info.Mode().Perm()
	}

	written, err := writeOutput(res.target, res.output, mode, e.Force)
	if err != nil {
		res.err = ErrWriteOutput.With(slog.String("file", res.target)).Wrap(err)

		return res
	}

	log.InfoContext(ctx, "output",
		slog.String("file", res.target),
		slog.Bool("changed", written),
		slog.String("size", humanize.IBytes(uint64(len(res.output)))))

	return res
}

// target returns the output path of src, or "" for stdout. Stdin always
// targets stdout.
func (e *Expand) target(src source) (string, error) {
	if e.Stdout || src.info == nil {
		return "", nil
	}

	path := src.path

	if e.Suffix != "" {
		base := filepath.Base(path)
		if trimmed, ok := strings.CutSuffix(base, e.Suffix); ok && trimmed != "" {
			path = filepath.Join(filepath.Dir(path), trimmed)
		}
	}

	if e.OutputDir != "" {
		path = filepath.Join(e.OutputDir, filepath.Base(path))
	} else if path == src.path {
		return "", nil
	}

	if info, err := os.Stat(path); err == nil && os.SameFile(info, src.info) {
		return "", ErrOverwrite.With(slog.String("file", src.path))
	}

	return path, nil
}

// writeOutput writes content to path unless the file already holds the same
// content and force is false. It reports whether the file was written.
func writeOutput(path, content string, mode os.FileMode, force bool) (bool, error) {
	if !force {
		prev, err := os.ReadFile(path)
		if err == nil && len(prev) == len(content) &&
			xxh3.Hash(prev) == xxh3.HashString(content) {
			return false, nil
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return false, err
	}

	defer os.Remove(tmp.Name())

	_, err = tmp.WriteString(content)
	if err == nil {
		err = tmp.Chmod(mode)
	}

	if cerr := tmp.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return false, err
	}

	return true, os.Rename(tmp.Name(), path)
}
