package cmd

import (
	"context"

	"github.com/ardnew/incpath/cli/cmd/repl"
	"github.com/ardnew/incpath/log"
	"github.com/ardnew/incpath/macro"
)

// Repl starts an interactive session that expands entry point calls as they
// are typed.
type Repl struct {
	NoHistory bool `help:"Do not read or write the history file."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context, opts *Options) error {
	var cacheDir string

	if ktx := kongContextFrom(ctx); ktx != nil && !r.NoHistory {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, cacheDir, macro.ParseFamily(opts.Family), log.Default(),
		opts.macroOptions()...)
}
