package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/incpath/macro"
)

// writeFile creates a file with content under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

// unixOptions returns Options with the default primitives and the unix
// family, independent of the host.
func unixOptions() *Options {
	return &Options{
		Family:          "unix",
		PrimitiveSource: macro.Include,
		PrimitiveBytes:  macro.IncludeBytes,
		PrimitiveText:   macro.IncludeStr,
	}
}

func TestUniqueSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.in", "a")
	b := writeFile(t, dir, "b.in", "b")

	link := filepath.Join(dir, "link.in")
	if err := os.Symlink(a, link); err != nil {
		t.Skip("symlinks unsupported:", err)
	}

	srcs, err := uniqueSources(context.Background(),
		[]string{"-", a, b, link, a, "-"})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{a, b, stdinSource}
	if len(srcs) != len(want) {
		t.Fatalf("got %d sources, want %d", len(srcs), len(want))
	}

	for i, src := range srcs {
		if src.path != want[i] {
			t.Errorf("srcs[%d].path = %q, want %q", i, src.path, want[i])
		}
	}

	if got := srcs[2].name(); got != "<stdin>" {
		t.Errorf("stdin name = %q, want %q", got, "<stdin>")
	}
}

func TestUniqueSources_Errors(t *testing.T) {
	t.Parallel()

	_, err := uniqueSources(context.Background(), nil)
	if !errors.Is(err, ErrNoSources) {
		t.Errorf("empty: error = %v, want %v", err, ErrNoSources)
	}

	_, err = uniqueSources(context.Background(),
		[]string{filepath.Join(t.TempDir(), "missing")})
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("missing: error = %v, want %v", err, ErrReadInput)
	}
}

func TestOptions_MacroOptions(t *testing.T) {
	t.Parallel()

	opts := &Options{Family: "windows", PrimitiveText: "embed_str"}

	expr, err := macro.ExpandArgs(context.Background(),
		macro.LoadPathStr, `"a", "b"`, opts.macroOptions()...)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := expr.String(), `embed_str("a\\b")`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	// an empty override keeps the default primitive
	expr, err = macro.ExpandArgs(context.Background(),
		macro.LoadPathBytes, `"a"`, opts.macroOptions()...)
	if err != nil {
		t.Fatal(err)
	}

	if expr.Primitive != macro.IncludeBytes {
		t.Errorf("primitive = %q, want %q", expr.Primitive, macro.IncludeBytes)
	}
}

func TestError_Is(t *testing.T) {
	t.Parallel()

	err := ErrExpand.With().Wrap(errors.New("boom"))

	if !errors.Is(err, ErrExpand) {
		t.Error("derived error should match its sentinel")
	}

	if errors.Is(err, ErrCheck) {
		t.Error("derived error should not match another sentinel")
	}

	if got, want := err.Error(), "expansion failed: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
