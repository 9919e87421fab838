package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/incpath/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads the YAML mapping
// stored under key name.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, "config"), "/path/to/config")
//
// Keys may be spelled with hyphens or underscores. A nested mapping keyed by
// a command name holds flags that only apply to that command:
//
//	config:
//	  log_level: debug
//	  family: windows
//	  expand:
//	    suffix: .tmpl
//	    jobs: 4
//
// Command-line flags override config file values. A malformed file is
// reported as a warning and otherwise ignored.
func resolve(
	ctx context.Context,
	name string,
) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).DecodeContext(ctx, &doc)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.WarnContext(ctx, "ignoring malformed config",
					slog.String("namespace", name),
					slog.Any("error", err))
			}

			return config{}, nil
		}

		ns, ok := doc[name].(map[string]any)
		if !ok {
			return config{}, nil
		}

		return config(normalize(ns)), nil
	}
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if parent != nil && parent.Command != nil {
		if sub, ok := r.lookup(parent.Command.Name).(map[string]any); ok {
			if value := config(sub).lookup(flag.Name); value != nil {
				return value, nil
			}
		}
	}

	return r.lookup(flag.Name), nil
}

// lookup returns the value stored under name, trying the hyphen and
// underscore spellings.
func (r config) lookup(name string) any {
	if value, ok := r[name]; ok {
		return value
	}

	if value, ok := r[strings.ReplaceAll(name, "-", "_")]; ok {
		return value
	}

	if value, ok := r[strings.ReplaceAll(name, "_", "-")]; ok {
		return value
	}

	return nil
}

// normalize converts numbers to strings, which kong requires for parsing,
// and recurses into nested mappings.
func normalize(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))

	for key, value := range m {
		switch v := value.(type) {
		case map[string]any:
			out[key] = normalize(v)
		case int:
			out[key] = strconv.Itoa(v)
		case int64:
			out[key] = strconv.FormatInt(v, 10)
		case uint64:
			out[key] = strconv.FormatUint(v, 10)
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			out[key] = v
		}
	}

	return out
}
