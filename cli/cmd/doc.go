// Package cmd implements the incpath subcommands: expand, check, eval, scan
// and init.
//
// Every command receives the global [Options] that select the platform
// family and the primitives entry points rewrite into.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the configuration file. It also names the configuration namespace
	// within that file.
	ConfigIdentifier = "config"
)
