package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/incpath/macro"
)

func TestScan_Run(t *testing.T) {
	t.Parallel()

	const content = `load_path("a", 1)`

	decode := map[string]func([]byte, any) error{
		"json": json.Unmarshal,
		"yaml": yaml.Unmarshal,
	}

	for _, format := range []string{"text", "json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			t.Parallel()

			src := writeFile(t, t.TempDir(), "in.rs", content)

			var out bytes.Buffer

			err := (&Scan{Format: format, Indent: 2, Source: src, stdout: &out}).
				Run(context.Background(), unixOptions())
			if err != nil {
				t.Fatal(err)
			}

			if format == "text" {
				want := strings.Join([]string{
					"1:1\tIdent\tload_path",
					"1:10\tPunct\t(",
					"1:11\tString\t\"a\"",
					"1:14\tPunct\t,",
					"1:16\tLiteral\t1",
					"1:17\tPunct\t)",
				}, "\n") + "\n"

				if got := out.String(); got != want {
					t.Errorf("got\n%s\nwant\n%s", got, want)
				}

				return
			}

			var toks []map[string]any
			if err := decode[format](out.Bytes(), &toks); err != nil {
				t.Fatalf("invalid %s: %v\n%s", format, err, out.String())
			}

			if len(toks) != 6 {
				t.Fatalf("got %d tokens, want 6", len(toks))
			}

			if toks[2]["kind"] != macro.KindString.String() || toks[2]["value"] != "a" {
				t.Errorf("token 2 = %v", toks[2])
			}
		})
	}
}

func TestScan_Run_Lexical(t *testing.T) {
	t.Parallel()

	src := writeFile(t, t.TempDir(), "in.rs", `load_path("open`)

	err := (&Scan{Format: "text", Source: src, stdout: &bytes.Buffer{}}).
		Run(context.Background(), unixOptions())

	d, ok := err.(*macro.Diagnostic)
	if !ok {
		t.Fatalf("error = %T %v, want *macro.Diagnostic", err, err)
	}

	if d.Kind != macro.ViolationLexical || d.File != src {
		t.Errorf("diagnostic = %v", d)
	}
}
