package exec

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	nberrors "github.com/rileyhilliard/netbar/internal/errors"
)

// Result is the outcome of a command that ran to completion.
// A non-zero ExitCode is not an error: ping exits 2 on total loss and the
// output is still useful.
type Result struct {
	Output   []byte
	ExitCode int
	Duration time.Duration
}

// Runner runs a program to completion and captures its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Streamer runs a program and hands its combined output to onChunk as it
// arrives. It returns once the program exits.
type Streamer interface {
	Stream(ctx context.Context, onChunk func([]byte), name string, args ...string) (exitCode int, err error)
}

// waitDelay bounds how long Wait blocks on inherited pipes after the
// context kills the process.
const waitDelay = time.Second

// Local executes programs directly on this machine, without a shell.
type Local struct{}

// NewLocal returns a Runner and Streamer backed by os/exec.
func NewLocal() *Local {
	return &Local{}
}

// Run executes name with args and returns its combined output.
// Launch failures (missing binary, permission denied) and context
// cancellation are returned as errors; exit codes are not.
func (Local) Run(ctx context.Context, name string, args ...string) (Result, error) {
	command := exec.CommandContext(ctx, name, args...)
	command.WaitDelay = waitDelay

	start := time.Now()
	output, runErr := command.CombinedOutput()
	res := Result{Output: output, Duration: time.Since(start)}

	if runErr == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		return res, nberrors.WrapWithCode(ctxErr, nberrors.ErrExec,
			"Command '"+name+"' did not finish in time",
			"")
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	res.ExitCode = -1
	return res, launchError(runErr, name, "run")
}

// Stream executes name with args, passing each read of its combined
// stdout/stderr to onChunk. Chunks are copies and safe to retain.
func (Local) Stream(ctx context.Context, onChunk func([]byte), name string, args ...string) (int, error) {
	command := exec.CommandContext(ctx, name, args...)
	command.WaitDelay = waitDelay

	pipe, err := command.StdoutPipe()
	if err != nil {
		return -1, nberrors.WrapWithCode(err, nberrors.ErrExec,
			"Couldn't create output pipe",
			"This shouldn't happen - please report this bug!")
	}
	command.Stderr = command.Stdout

	if err := command.Start(); err != nil {
		return -1, launchError(err, name, "start")
	}

	buf := make([]byte, 4096)
	for {
		n, readErr := pipe.Read(buf)
		if n > 0 && onChunk != nil {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			onChunk(chunk)
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) && ctx.Err() == nil {
				_ = command.Wait()
				return -1, nberrors.WrapWithCode(readErr, nberrors.ErrExec,
					"Lost output from '"+name+"'", "")
			}
			break
		}
	}

	waitErr := command.Wait()
	if waitErr == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, nberrors.WrapWithCode(waitErr, nberrors.ErrExec,
		"Failed waiting for '"+name+"'", "")
}
