package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/incpath/cli/cmd"
	"github.com/ardnew/incpath/pkg"
)

// CLI is the top-level command-line interface for incpath.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`
	Macro cmd.Options `embed:"" group:"macro"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Expand cmd.Expand `cmd:"" default:"withargs" help:"Rewrite entry point calls in source files (default)"`
	Check  cmd.Check  `cmd:""                    help:"Validate entry point calls without writing output"`
	Eval   cmd.Eval   `cmd:""                    help:"Expand a single call given on the command line"`
	Scan   cmd.Scan   `cmd:""                    help:"Print the token stream of a source"`
	Repl   cmd.Repl   `cmd:""                    help:"Expand calls interactively"`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file"`
}

func macroGroup() kong.Group {
	var group kong.Group

	group.Key = "macro"
	group.Title = "Expansion options"

	return group
}

// Run executes the incpath CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            pkg.Version,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Macro.Vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group(), macroGroup()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx, baseConfig), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli.Macro)
}
