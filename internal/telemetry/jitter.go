package telemetry

import "math"

// JitterWindowSize is the number of recent latencies each target keeps.
const JitterWindowSize = 10

// JitterWindow holds recent latencies for one target in arrival order.
type JitterWindow struct {
	samples *History[float64]
}

// NewJitterWindow creates an empty window.
func NewJitterWindow() *JitterWindow {
	return &JitterWindow{samples: NewHistory[float64](JitterWindowSize)}
}

// Observe appends latency and returns the updated jitter.
func (w *JitterWindow) Observe(latencyMs float64) float64 {
	w.samples.Push(latencyMs)
	return w.Value()
}

// Value is the mean absolute difference between consecutive samples, in
// arrival order. It is 0 until two samples are present.
func (w *JitterWindow) Value() float64 {
	values := w.samples.Values()
	if len(values) < 2 {
		return 0
	}

	var sum float64
	for i := 1; i < len(values); i++ {
		sum += math.Abs(values[i] - values[i-1])
	}
	return sum / float64(len(values)-1)
}

// Reset drops every sample.
func (w *JitterWindow) Reset() {
	w.samples.Clear()
}

// Jitter keeps an independent window per target.
// Like History it relies on the Scheduler's lock.
type Jitter struct {
	windows map[Target]*JitterWindow
}

// NewJitter creates an estimator with no samples.
func NewJitter() *Jitter {
	return &Jitter{windows: make(map[Target]*JitterWindow)}
}

// Observe records latency for target and returns that target's jitter.
func (j *Jitter) Observe(target Target, latencyMs float64) float64 {
	w, ok := j.windows[target]
	if !ok {
		w = NewJitterWindow()
		j.windows[target] = w
	}
	return w.Observe(latencyMs)
}

// Value returns the current jitter for target without recording a sample.
func (j *Jitter) Value(target Target) float64 {
	if w, ok := j.windows[target]; ok {
		return w.Value()
	}
	return 0
}
