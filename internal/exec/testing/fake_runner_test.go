package testing

import (
	"context"
	"testing"
	"time"

	"github.com/rileyhilliard/netbar/internal/exec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ exec.Runner   = (*FakeRunner)(nil)
	_ exec.Streamer = (*FakeStreamer)(nil)
)

func TestFakeRunner_FixedAndQueued(t *testing.T) {
	f := NewFakeRunner().
		On("route -n get default", Response{Output: "gateway: 10.0.0.1"}).
		Queue("route -n get default", Response{Output: "first"})

	res, err := f.Run(context.Background(), "route", "-n", "get", "default")
	require.NoError(t, err)
	assert.Equal(t, "first", string(res.Output))

	res, err = f.Run(context.Background(), "route", "-n", "get", "default")
	require.NoError(t, err)
	assert.Equal(t, "gateway: 10.0.0.1", string(res.Output))

	assert.Equal(t, 2, f.CallCount("route -n get default"))
}

func TestFakeRunner_UnknownCommand(t *testing.T) {
	_, err := NewFakeRunner().Run(context.Background(), "ping", "-c", "5")
	assert.Error(t, err)
}

func TestFakeRunner_DelayHonoursContext(t *testing.T) {
	f := NewFakeRunner().On("slow", Response{Delay: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Run(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFakeStreamer_FinishAndCancel(t *testing.T) {
	s := NewFakeStreamer("a", "b")
	var got []string

	done := make(chan int, 1)
	go func() {
		code, _ := s.Stream(context.Background(), func(b []byte) { got = append(got, string(b)) }, "networkQuality")
		done <- code
	}()

	<-s.Started()
	assert.Equal(t, 1, s.Active())
	s.Finish(0)
	assert.Equal(t, 0, <-done)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 0, s.Active())
}
