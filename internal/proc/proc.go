// Package proc runs external helper commands for the statusline.
//
// Every collaborator (usage reporter, host CLI, git) is reached through the
// Runner interface so tests can substitute canned results.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// pipeGrace is how long output pipes may outlive a killed or exited child
// when the caller set a deadline.
const pipeGrace = 250 * time.Millisecond

// Command is a command line plus the bytes to feed on stdin.
// A nil Stdin leaves the child's stdin unconnected.
type Command struct {
	Name  string
	Args  []string
	Stdin []byte
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is what a finished process left behind.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the process exited with status 0.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Runner starts a command and waits for it to finish.
// A non-zero exit is not an error; err is set only when the process could
// not be started, its I/O failed, or ctx ended before it finished.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	// Dir is the working directory of spawned processes; empty inherits ours.
	Dir string
}

func (r ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = r.Dir

	// Non-*os.File readers and writers make os/exec feed stdin and drain
	// stdout/stderr on separate goroutines, so a child filling one pipe
	// never stalls on the other.
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}
	// Killing the child leaves its own children holding our pipes open;
	// once the deadline passes, stop waiting for them.
	if _, ok := ctx.Deadline(); ok {
		cmd.WaitDelay = pipeGrace
	}

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start %s: %w", c, err)
	}
	waitErr := cmd.Wait()

	res := Result{ExitCode: -1, Stdout: outBuf.String(), Stderr: errBuf.String()}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		return res, fmt.Errorf("%s: %w", c, ctx.Err())
	case waitErr == nil, errors.As(waitErr, &exitErr), errors.Is(waitErr, exec.ErrWaitDelay):
		return res, nil
	}
	return res, fmt.Errorf("wait %s: %w", c, waitErr)
}
