package profiler

import "time"

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval sets how often stats are published.
func WithUpdateInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = interval
	}
}

// WithSink sets a ValueSink receiving "FPS", "Frame", "Heap" and "GC" readings on every publish.
func WithSink(sink ValueSink) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.sink = sink
	}
}

// WithClock replaces time.Now as the profiler's time source.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// WithQuiet disables the periodic log line.
func WithQuiet(quiet bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.quiet = quiet
	}
}
