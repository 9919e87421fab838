// Package cli contains the command line interface for incpath.
//
// # Usage
//
// The default command expands every source named on the command line:
//
//	incpath assets.rs.in            # writes assets.rs
//	incpath -F windows -o gen *.in  # writes gen/*, joined with '\'
//	incpath check src/*.in          # reports diagnostics only
//	incpath eval load_path_str '"a", "b"'
//
// # Configuration
//
// Flag defaults are read from a YAML file in the XDG configuration directory
// (~/.config/incpath/config on most systems), generated by "incpath init".
// Values live under the "config" key; a nested mapping named after a command
// applies to that command only:
//
//	config:
//	  family: unix
//	  log_level: debug
//	  expand:
//	    suffix: .tmpl
//
// A JSON file at the same path with a ".json" extension is also honored.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize output when writing to a terminal
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o incpath .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/incpath/pprof)
package cli
