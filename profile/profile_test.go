package profile

import "testing"

func TestProfiler_StartWithoutMode(t *testing.T) {
	stop := Profiler{}.Start()
	if _, ok := stop.(nop); !ok {
		t.Fatalf("expected no-op stopper, got %T", stop)
	}

	stop.Stop()
}

func TestProfiler_StartUnknownMode(t *testing.T) {
	stop := Profiler{Mode: "bogus", Dir: t.TempDir()}.Start()
	if _, ok := stop.(nop); !ok {
		t.Fatalf("expected no-op stopper, got %T", stop)
	}

	stop.Stop()
}
