package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/incpath/cli/cmd"
	"github.com/ardnew/incpath/macro"
)

func parse(t *testing.T, config string, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	var cli CLI

	opts := []kong.Option{
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group(), macroGroup()},
		),
		kong.Vars{
			cmd.ConfigIdentifier: "config",
			cmd.CacheIdentifier:  t.TempDir(),
			"version":            "0.0.0",
		}.
			CloneWith(cli.Log.vars()).
			CloneWith(cli.Pprof.vars()).
			CloneWith(cli.Macro.Vars()),
	}

	if config != "" {
		r, err := resolve(context.Background(), baseConfig)(strings.NewReader(config))
		if err != nil {
			t.Fatal(err)
		}

		opts = append(opts, kong.Resolvers(r))
	}

	parser, err := kong.New(&cli, opts...)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%q): %v", args, err)
	}

	return &cli, ktx
}

func TestCLI_Defaults(t *testing.T) {
	cli, ktx := parse(t, "")

	if got := ktx.Command(); !strings.HasPrefix(got, "expand") {
		t.Errorf("default command = %q, want expand", got)
	}

	if cli.Macro.Family != macro.HostFamily.String() {
		t.Errorf("family = %q, want %q", cli.Macro.Family, macro.HostFamily)
	}

	if cli.Macro.PrimitiveText != macro.IncludeStr {
		t.Errorf("primitive-text = %q, want %q", cli.Macro.PrimitiveText, macro.IncludeStr)
	}

	if len(cli.Expand.Sources) != 1 || cli.Expand.Sources[0] != "-" {
		t.Errorf("sources = %q, want [-]", cli.Expand.Sources)
	}

	if cli.Expand.Suffix != ".in" || cli.Expand.Jobs < 1 {
		t.Errorf("suffix = %q, jobs = %d", cli.Expand.Suffix, cli.Expand.Jobs)
	}
}

func TestCLI_Flags(t *testing.T) {
	tests := []struct {
		name   string
		config string
		args   []string
		check  func(t *testing.T, cli *CLI)
	}{
		{
			name: "expand_flags",
			args: []string{"-F", "windows", "expand", "-j", "3", "-o", "out", "a.in"},
			check: func(t *testing.T, cli *CLI) {
				if cli.Macro.Family != "windows" || cli.Expand.Jobs != 3 ||
					!strings.HasSuffix(cli.Expand.OutputDir, "out") {
					t.Errorf("got %+v %+v", cli.Macro, cli.Expand)
				}
			},
		},
		{
			name: "eval_args",
			args: []string{"eval", "load_path", `"a",`, `"b"`},
			check: func(t *testing.T, cli *CLI) {
				if cli.Eval.Entry != "load_path" || len(cli.Eval.Args) != 2 {
					t.Errorf("got %+v", cli.Eval)
				}
			},
		},
		{
			name:   "config_file",
			config: "config:\n  family: windows\n  primitive_bytes: embed\n  scan:\n    indent: 4\n",
			args:   []string{"scan", "-t", "yaml"},
			check: func(t *testing.T, cli *CLI) {
				if cli.Macro.Family != "windows" || cli.Macro.PrimitiveBytes != "embed" {
					t.Errorf("config not applied: %+v", cli.Macro)
				}

				if cli.Scan.Indent != 4 || cli.Scan.Format != "yaml" {
					t.Errorf("scan = %+v", cli.Scan)
				}
			},
		},
		{
			name:   "flag_overrides_config",
			config: "config:\n  family: windows\n",
			args:   []string{"--family=unix", "check", "x.in"},
			check: func(t *testing.T, cli *CLI) {
				if cli.Macro.Family != "unix" {
					t.Errorf("family = %q, want unix", cli.Macro.Family)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, _ := parse(t, tt.config, tt.args...)
			tt.check(t, cli)
		})
	}
}
