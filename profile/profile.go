// Package profile starts optional runtime profiling around a render.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	haparanda render --pprof-mode cpu page.hbs
//
// Without the tag [Modes] is empty and [Profiler.Start] does nothing.
// Profiles are written to the profiler's directory, named after the mode
// (cpu.pprof, mem.pprof, ...), for use with "go tool pprof".
package profile

// Tag is the build tag that enables profiling. It also names the
// command line flag group.
const Tag = "pprof"

// Profiler selects what to profile and where to write it.
type Profiler struct {
	Mode  string
	Dir   string
	Quiet bool
}

// Stopper ends a profile and flushes it to disk.
type Stopper interface{ Stop() }

// Start begins profiling. It returns a no-op Stopper if Mode is empty or
// not one of [Modes].
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return nop{}
	}

	return start(p)
}

type nop struct{}

func (nop) Stop() {}
