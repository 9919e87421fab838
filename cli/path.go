package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/adrg/xdg"

	"github.com/ardnew/incpath/pkg"
)

// baseConfig is the base name of the configuration file and namespace.
const baseConfig = "config"

// defaultDirMode is the default permission mode for created directories.
const defaultDirMode os.FileMode = 0o700

// prefixRules are applied in order to the executable name, without its
// extension, to form the base prefix.
var prefixRules = []struct {
	rex *regexp.Regexp
	rep string
}{
	{regexp.MustCompile(`^__debug_bin\d+$`), pkg.Name}, // dlv default output
	{regexp.MustCompile(`^\.+`), ""},                   // remove leading dot(s)
}

// basePrefix returns the base prefix string used to construct the paths to
// the configuration and cache directories. See [prefixOf].
var basePrefix = sync.OnceValue(
	func() string {
		exe, err := os.Executable()
		if err != nil {
			exe = os.Args[0]
		}

		return prefixOf(exe)
	},
)

// prefixOf returns the base name of the executable at path without its
// extension, rewritten by [prefixRules]. Test binaries ("pkg.test", or
// "pkg.test.exe") and names that reduce to "" yield [pkg.Name].
func prefixOf(path string) string {
	id := filepath.Base(path)

	if strings.HasSuffix(strings.TrimSuffix(id, ".exe"), ".test") {
		return pkg.Name
	}

	id = strings.TrimSuffix(id, filepath.Ext(id))

	for _, rule := range prefixRules {
		id = rule.rex.ReplaceAllString(id, rule.rep)
	}

	if id == "" {
		return pkg.Name
	}

	return id
}

// configDir returns the configuration directory path, following the XDG base
// directory specification on every platform.
var configDir = sync.OnceValue(
	func() string { return filepath.Join(xdg.ConfigHome, basePrefix()) },
)

// cacheDir returns the cache directory path used for transient files such as
// profiles and the repl history.
var cacheDir = sync.OnceValue(
	func() string { return filepath.Join(xdg.CacheHome, basePrefix()) },
)

// configPath returns the absolute path to a file or directory formed by joining
// the global configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [configDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		err := os.MkdirAll(dir, defaultDirMode)
		if err != nil {
			return err
		}
	}

	return nil
}
