package exec

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	nberrors "github.com/rileyhilliard/netbar/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRun_SimpleCommand(t *testing.T) {
	res, err := NewLocal().Run(context.Background(), "sh", "-c", "echo hello")

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", string(res.Output))
}

func TestLocalRun_CombinesStderr(t *testing.T) {
	res, err := NewLocal().Run(context.Background(), "sh", "-c", "echo out; echo err >&2")

	require.NoError(t, err)
	assert.Contains(t, string(res.Output), "out")
	assert.Contains(t, string(res.Output), "err")
}

func TestLocalRun_NonZeroExitCode(t *testing.T) {
	res, err := NewLocal().Run(context.Background(), "sh", "-c", "echo partial; exit 2")

	require.NoError(t, err, "non-zero exit is not a launch failure")
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "partial\n", string(res.Output))
}

func TestLocalRun_MissingExecutable(t *testing.T) {
	res, err := NewLocal().Run(context.Background(), "netbar-definitely-not-a-binary")

	require.Error(t, err)
	assert.True(t, nberrors.IsCode(err, nberrors.ErrExec))
	assert.True(t, IsCommandNotFound(err))
	assert.Equal(t, -1, res.ExitCode)
}

func TestLocalRun_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewLocal().Run(ctx, "sleep", "5")

	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestLocalStream_DeliversChunks(t *testing.T) {
	var mu sync.Mutex
	var got strings.Builder

	code, err := NewLocal().Stream(context.Background(), func(b []byte) {
		mu.Lock()
		got.Write(b)
		mu.Unlock()
	}, "sh", "-c", "echo one; echo two >&2; echo three")

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, got.String(), "one")
	assert.Contains(t, got.String(), "two")
	assert.Contains(t, got.String(), "three")
}

func TestLocalStream_ExitCode(t *testing.T) {
	code, err := NewLocal().Stream(context.Background(), nil, "sh", "-c", "exit 3")

	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestLocalStream_MissingExecutable(t *testing.T) {
	_, err := NewLocal().Stream(context.Background(), nil, "netbar-definitely-not-a-binary")

	require.Error(t, err)
	assert.True(t, nberrors.IsCode(err, nberrors.ErrExec))
}

func TestLocalStream_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		_, err := NewLocal().Stream(ctx, nil, "sleep", "5")
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}
}
