package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/incpath/macro"
)

func TestCheck_Run(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		quiet   bool
		want    []string
		wantErr error
	}{
		{
			name:    "valid",
			content: `load_path("a", "b"); load_path_str("c")`,
			want:    []string{"ok", "(2 sites)"},
		},
		{
			name:    "no_sites",
			content: `fn main() {}`,
			want:    []string{"ok", "(0 sites)"},
		},
		{
			name:    "invalid",
			content: "x\nload_path(\"a\", 42)\n",
			want: []string{
				":2:16: " + macro.ViolationLiteral.String(),
				"  2 | load_path(\"a\", 42)",
				"^",
			},
			wantErr: ErrCheck,
		},
		{
			name:    "quiet",
			content: `load_path(a)`,
			quiet:   true,
			wantErr: ErrCheck,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := writeFile(t, t.TempDir(), "src.rs.in", tt.content)

			var out bytes.Buffer

			err := (&Check{Quiet: tt.quiet, Sources: []string{src}, stdout: &out}).
				Run(context.Background(), unixOptions())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := out.String()

			if tt.quiet && got != "" {
				t.Errorf("quiet output = %q, want empty", got)
			}

			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestDiagStyle_Render(t *testing.T) {
	t.Parallel()

	d := &macro.Diagnostic{
		File:  "f.in",
		Kind:  macro.ViolationToken,
		Token: macro.Token{Kind: macro.KindPunct, Text: ";", Pos: macro.Position{Line: 1, Column: 5}},
	}

	// a bytes.Buffer is not a terminal, so no escape sequences are emitted
	got := makeDiagStyle(&bytes.Buffer{}).render(d, `f(a;b)`)

	want := "f.in:1:5: " + d.Message() + "\n" +
		"  1 | f(a;b)\n" +
		"          ^\n"
	if got != want {
		t.Errorf("render =\n%q\nwant\n%q", got, want)
	}
}
