package macro

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExpandArgs_Scenarios(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		entry  string
		args   string
		family Family
		want   string
	}{
		{
			name:   "text variant",
			entry:  LoadPathStr,
			args:   `"dir", "file.txt"`,
			family: FamilyUnix,
			want:   `include_str("dir/file.txt")`,
		},
		{
			name:   "bytes variant",
			entry:  LoadPathBytes,
			args:   `"..", "res", "data.bin"`,
			family: FamilyUnix,
			want:   `include_bytes("../res/data.bin")`,
		},
		{
			name:   "no arguments",
			entry:  LoadPath,
			args:   ``,
			family: FamilyUnix,
			want:   `include("")`,
		},
		{
			name:   "trailing comma",
			entry:  LoadPathStr,
			args:   `"dir", "file.txt",`,
			family: FamilyUnix,
			want:   `include_str("dir/file.txt")`,
		},
		{
			name:   "windows separator",
			entry:  LoadPathStr,
			args:   `"a", "b", "c"`,
			family: FamilyWindows,
			want:   `include_str("a\\b\\c")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ExpandArgs(ctx, tt.entry, tt.args, WithFamily(tt.family))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := expr.String(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExpandArgs_Failures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		args string
		kind Violation
		pos  Position
	}{
		{
			name: "numeric literal first",
			args: `42, "file.txt"`,
			kind: ViolationLiteral,
			pos:  Position{Offset: 0, Line: 1, Column: 1},
		},
		{
			name: "double comma",
			args: `"a",, "b"`,
			kind: ViolationPunct,
			pos:  Position{Offset: 4, Line: 1, Column: 5},
		},
		{
			name: "leading comma",
			args: `, "a"`,
			kind: ViolationPunct,
			pos:  Position{Offset: 0, Line: 1, Column: 1},
		},
		{
			name: "missing comma",
			args: `"a" "b"`,
			kind: ViolationToken,
			pos:  Position{Offset: 4, Line: 1, Column: 5},
		},
		{
			name: "nested group",
			args: `"a", ("b")`,
			kind: ViolationToken,
			pos:  Position{Offset: 5, Line: 1, Column: 6},
		},
		{
			name: "variable",
			args: `dir, "b"`,
			kind: ViolationToken,
			pos:  Position{Offset: 0, Line: 1, Column: 1},
		},
		{
			name: "stray closer",
			args: `"a")`,
			kind: ViolationPunct,
			pos:  Position{Offset: 3, Line: 1, Column: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ExpandArgs(ctx, LoadPathStr, tt.args)
			if err == nil {
				t.Fatalf("expected error, got %s", expr)
			}

			if expr != (Expr{}) {
				t.Errorf("expected zero expression on failure, got %s", expr)
			}

			var d *Diagnostic
			if !errors.As(err, &d) {
				t.Fatalf("expected *Diagnostic, got %T: %v", err, err)
			}

			if d.Kind != tt.kind {
				t.Errorf("violation: got %v, want %v", d.Kind, tt.kind)
			}

			if d.Pos() != tt.pos {
				t.Errorf("position: got %+v, want %+v", d.Pos(), tt.pos)
			}
		})
	}
}

func TestExpandArgs_UnknownEntry(t *testing.T) {
	_, err := ExpandArgs(context.Background(), "include_path", `"a"`)
	if !errors.Is(err, ErrUnknownEntry) {
		t.Errorf("expected ErrUnknownEntry, got %v", err)
	}
}

func TestExpandSource_Rewrites(t *testing.T) {
	source := `// load_path("not", "a", "call")
const help = "load_path_str(\"x\")";

fn main() {
    let code = load_path("gen", "code.rs");
    let data = load_path_bytes(
        "..",
        "res",
        "data.bin",
    );
    let text = load_path_str("dir", "file.txt");
    let none = load_path();
    let other = not_load_path("x");
}
`

	want := `// load_path("not", "a", "call")
const help = "load_path_str(\"x\")";

fn main() {
    let code = include("gen/code.rs");
    let data = include_bytes("../res/data.bin");
    let text = include_str("dir/file.txt");
    let none = include("");
    let other = not_load_path("x");
}
`

	res, err := ExpandSource(context.Background(), source, WithFamily(FamilyUnix))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Output != want {
		t.Errorf("output mismatch:\n--- got ---\n%s\n--- want ---\n%s", res.Output, want)
	}

	if len(res.Sites) != 4 {
		t.Fatalf("expected 4 sites, got %d", len(res.Sites))
	}

	data := res.Sites[1]
	if data.Entry.Name != LoadPathBytes {
		t.Errorf("site 1 entry: got %s", data.Entry.Name)
	}

	if data.Pos.Line != 6 || data.End.Line != 10 {
		t.Errorf("site 1 span: got %v-%v", data.Pos, data.End)
	}

	if source[data.Pos.Offset:data.End.Offset] != "load_path_bytes(\n        \"..\",\n        \"res\",\n        \"data.bin\",\n    )" {
		t.Errorf("site 1 span text: %q", source[data.Pos.Offset:data.End.Offset])
	}
}

func TestExpandSource_QualifiedCall(t *testing.T) {
	res, err := ExpandSource(context.Background(),
		`x := pkg.load_path_str("a", "b")`, WithFamily(FamilyWindows))
	if err != nil {
		t.Fatal(err)
	}

	if want := `x := pkg.include_str("a\\b")`; res.Output != want {
		t.Errorf("got %s, want %s", res.Output, want)
	}
}

func TestExpandSource_NoSites(t *testing.T) {
	source := "package main\n\nfunc main() {}\n"

	res, err := ExpandSource(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}

	if res.Output != source || len(res.Sites) != 0 {
		t.Errorf("source without call sites should be unchanged, got %q", res.Output)
	}
}

func TestExpandSource_Diagnostics(t *testing.T) {
	source := `a := load_path_str(42, "file.txt")
b := load_path_str("ok")
c := load_path_bytes("a",, "b")
`

	res, err := ExpandSource(context.Background(), source, WithFile("main.go.in"))
	if err == nil {
		t.Fatalf("expected error, got output %q", res.Output)
	}

	if res != nil {
		t.Error("expected nil result on failure")
	}

	var diags Diagnostics
	if !errors.As(err, &diags) {
		t.Fatalf("expected Diagnostics, got %T", err)
	}

	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %v", len(diags), diags)
	}

	if d := diags[0]; d.Kind != ViolationLiteral || d.Pos().Line != 1 || d.Pos().Column != 20 {
		t.Errorf("first diagnostic: %v", d)
	}

	if d := diags[1]; d.Kind != ViolationPunct || d.Pos().Line != 3 || d.Pos().Column != 26 {
		t.Errorf("second diagnostic: %v", d)
	}

	msg := err.Error()
	if !strings.Contains(msg, "main.go.in:1:20: unexpected literal type") {
		t.Errorf("error message missing first diagnostic: %s", msg)
	}

	if !strings.Contains(msg, "main.go.in:3:26: unexpected punctuation or punctuation type") {
		t.Errorf("error message missing second diagnostic: %s", msg)
	}
}

func TestExpandSource_Unterminated(t *testing.T) {
	_, err := ExpandSource(context.Background(), `x := load_path("a", "b"`)

	var diags Diagnostics
	if !errors.As(err, &diags) || len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", err)
	}

	if diags[0].Kind != ViolationUnterminated {
		t.Errorf("got %v", diags[0].Kind)
	}

	if diags[0].Pos().Column != 15 {
		t.Errorf("diagnostic should point at '(', got %v", diags[0].Pos())
	}
}

func TestExpandSource_LexicalError(t *testing.T) {
	_, err := ExpandSource(context.Background(), `x := load_path("a`)

	var d *Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("expected diagnostic, got %v", err)
	}

	if d.Kind != ViolationLexical {
		t.Errorf("got %v", d.Kind)
	}
}

func TestExpandSource_RustSyntax(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "lifetime",
			source: `fn data() -> &'static [u8] { load_path_bytes("..", "res", "data.bin") }`,
			want:   `fn data() -> &'static [u8] { include_bytes("../res/data.bin") }`,
		},
		{
			name:   "labeled loop",
			source: "'outer: loop { let s = load_path_str(\"a\"); break 'outer; }",
			want:   "'outer: loop { let s = include_str(\"a\"); break 'outer; }",
		},
		{
			name:   "raw string elsewhere",
			source: `let p = r"C:\x\y"; let s = load_path_str("a", "b");`,
			want:   `let p = r"C:\x\y"; let s = include_str("a/b");`,
		},
		{
			name:   "unicode escape elsewhere",
			source: `let e = "\u{1F600}"; load_path("m.rs")`,
			want:   `let e = "\u{1F600}"; include("m.rs")`,
		},
		{
			name:   "undecodable string elsewhere",
			source: `let q = "\q"; load_path("m.rs")`,
			want:   `let q = "\q"; include("m.rs")`,
		},
		{
			name:   "byte string elsewhere",
			source: `const B: &[u8] = b"\xFF"; load_path("m.rs")`,
			want:   `const B: &[u8] = b"\xFF"; include("m.rs")`,
		},
		{
			name:   "rust escapes in arguments",
			source: `load_path_str(r"win\dir", "\u{e9}t\u{e9}", r#"q"uote"#)`,
			want:   `include_str("win\\dir/été/q\"uote")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ExpandSource(context.Background(), tt.source, WithFamily(FamilyUnix))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if res.Output != tt.want {
				t.Errorf("got  %s\nwant %s", res.Output, tt.want)
			}
		})
	}
}

func TestExpandSource_UndecodableArgument(t *testing.T) {
	_, err := ExpandSource(context.Background(),
		`let ok = "\q"; load_path("a", "b\q")`, WithFile("lib.rs.in"))

	var diags Diagnostics
	if !errors.As(err, &diags) || len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", err)
	}

	d := diags[0]
	if d.Kind != ViolationLexical || d.Detail != `unknown escape \q` {
		t.Errorf("got %v %q", d.Kind, d.Detail)
	}

	if d.Pos().Column != 31 || d.File != "lib.rs.in" {
		t.Errorf("diagnostic should point at the second argument, got %v", d)
	}
}

func TestExpandSource_ByteStringArgument(t *testing.T) {
	_, err := ExpandSource(context.Background(), `load_path(b"a")`)

	var diags Diagnostics
	if !errors.As(err, &diags) || len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", err)
	}

	if diags[0].Kind != ViolationLiteral {
		t.Errorf("got %v", diags[0].Kind)
	}
}

func TestExpandReader(t *testing.T) {
	res, err := ExpandReader(context.Background(),
		strings.NewReader(`load_path_str("a", "b")`), WithFamily(FamilyUnix))
	if err != nil {
		t.Fatal(err)
	}

	if res.Output != `include_str("a/b")` {
		t.Errorf("got %s", res.Output)
	}
}

func TestExpandSource_CustomEntries(t *testing.T) {
	res, err := ExpandSource(context.Background(),
		`embed_text("a", "b") load_path("c")`,
		WithFamily(FamilyUnix),
		WithEntries(Entry{Name: "embed_text", Primitive: "readText", Kind: EntryText}),
	)
	if err != nil {
		t.Fatal(err)
	}

	if want := `readText("a/b") load_path("c")`; res.Output != want {
		t.Errorf("got %s, want %s", res.Output, want)
	}
}

func TestDiagnostic_Snippet(t *testing.T) {
	source := "first\nx := load_path(\"a\",, \"b\")\n"

	_, err := ExpandSource(context.Background(), source)

	var d *Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("expected diagnostic, got %v", err)
	}

	want := "  2 | x := load_path(\"a\",, \"b\")\n" +
		"                         ^\n"
	if got := d.Snippet(source); got != want {
		t.Errorf("snippet mismatch:\n%q\n%q", got, want)
	}
}
