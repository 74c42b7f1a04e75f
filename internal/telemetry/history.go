package telemetry

// DefaultHistorySize is the number of samples kept per metric (one minute at 1 Hz).
const DefaultHistorySize = 60

// History is a fixed-capacity FIFO of samples.
// Once full, each Push evicts the oldest value.
//
// History is not safe for concurrent use; the Scheduler guards every buffer
// with its own lock.
type History[T any] struct {
	data  []T
	head  int
	count int
	size  int
}

// NewHistory creates a buffer holding at most size values.
func NewHistory[T any](size int) *History[T] {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History[T]{
		data: make([]T, size),
		size: size,
	}
}

// Push appends value, evicting the oldest value when full.
func (h *History[T]) Push(value T) {
	h.data[h.head] = value
	h.head = (h.head + 1) % h.size
	if h.count < h.size {
		h.count++
	}
}

// Last returns the newest count values in chronological order (oldest first).
// Returns fewer values if not enough history is available.
func (h *History[T]) Last(count int) []T {
	if count <= 0 || h.count == 0 {
		return nil
	}

	if count > h.count {
		count = h.count
	}

	result := make([]T, count)

	// head points at the next write position, so the newest value is at head-1
	start := (h.head - count + h.size) % h.size
	for i := 0; i < count; i++ {
		result[i] = h.data[(start+i)%h.size]
	}

	return result
}

// Values returns every stored value, oldest first.
func (h *History[T]) Values() []T {
	return h.Last(h.count)
}

// Latest returns the newest value.
func (h *History[T]) Latest() (T, bool) {
	var zero T
	if h.count == 0 {
		return zero, false
	}
	return h.data[(h.head-1+h.size)%h.size], true
}

// Len returns the number of stored values.
func (h *History[T]) Len() int {
	return h.count
}

// Cap returns the buffer capacity.
func (h *History[T]) Cap() int {
	return h.size
}

// Clear drops every stored value.
func (h *History[T]) Clear() {
	var zero T
	for i := range h.data {
		h.data[i] = zero
	}
	h.head = 0
	h.count = 0
}
