package testing

import (
	"context"
	"sync"
)

// FakeStreamer emits scripted chunks and then blocks until Finish is
// called or the context is cancelled.
type FakeStreamer struct {
	mu       sync.Mutex
	chunks   []string
	exitCode int
	startErr error
	finish   chan struct{}
	started  chan struct{}
	active   int
	starts   int
}

// NewFakeStreamer creates a streamer that writes chunks in order.
func NewFakeStreamer(chunks ...string) *FakeStreamer {
	return &FakeStreamer{
		chunks:  chunks,
		finish:  make(chan struct{}),
		started: make(chan struct{}, 16),
	}
}

// FailStart makes Stream return err without producing output.
func (f *FakeStreamer) FailStart(err error) *FakeStreamer {
	f.startErr = err
	return f
}

// Finish lets running and future streams exit with code.
func (f *FakeStreamer) Finish(code int) {
	f.mu.Lock()
	f.exitCode = code
	f.mu.Unlock()
	close(f.finish)
}

// Started is signalled each time Stream begins emitting.
func (f *FakeStreamer) Started() <-chan struct{} {
	return f.started
}

// Active returns the number of streams currently running.
func (f *FakeStreamer) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Starts returns the total number of Stream calls.
func (f *FakeStreamer) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

// Stream implements exec.Streamer.
func (f *FakeStreamer) Stream(ctx context.Context, onChunk func([]byte), name string, args ...string) (int, error) {
	f.mu.Lock()
	f.starts++
	if f.startErr != nil {
		err := f.startErr
		f.mu.Unlock()
		return -1, err
	}
	f.active++
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	for _, c := range f.chunks {
		if onChunk != nil {
			onChunk([]byte(c))
		}
	}
	f.started <- struct{}{}

	select {
	case <-f.finish:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.exitCode, nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}
