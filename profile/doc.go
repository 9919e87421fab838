// Package profile provides optional runtime profiling for incpath.
//
// # Overview
//
// This package integrates [github.com/pkg/profile] behind the "pprof" build
// tag. Without the tag, [Modes] is empty and [Profiler.Start] is a no-op.
//
//	go build -tags pprof .
//
// # Available Profiling Modes
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// The CLI exposes the same settings as --pprof-mode, --pprof-dir and
// --pprof-quiet. Profiles are written to $XDG_CACHE_HOME/incpath/pprof by
// default and can be inspected with:
//
//	go tool pprof -http=: $XDG_CACHE_HOME/incpath/pprof/cpu.pprof
//
// When built with the pprof tag, the package also imports [net/http/pprof],
// which registers its handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
