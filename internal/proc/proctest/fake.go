// Package proctest provides a canned proc.Runner for tests.
package proctest

import (
	"context"
	"fmt"
	"sync"

	"ccstatusline/internal/proc"
)

// Response is the canned outcome of one command line.
type Response struct {
	Result proc.Result
	Err    error
}

// Fake answers commands from a table keyed by Command.String().
// Unknown commands fail as if the binary were missing.
type Fake struct {
	Responses map[string]Response

	mu    sync.Mutex
	calls []proc.Command
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{Responses: map[string]Response{}}
}

// On registers a successful run of line printing stdout.
func (f *Fake) On(line, stdout string) *Fake {
	f.Responses[line] = Response{Result: proc.Result{Stdout: stdout}}
	return f
}

// OnResult registers an arbitrary result for line.
func (f *Fake) OnResult(line string, res proc.Result) *Fake {
	f.Responses[line] = Response{Result: res}
	return f
}

// OnError registers a start failure for line.
func (f *Fake) OnError(line string, err error) *Fake {
	f.Responses[line] = Response{Err: err}
	return f
}

func (f *Fake) Run(_ context.Context, cmd proc.Command) (proc.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	r, ok := f.Responses[cmd.String()]
	if !ok {
		return proc.Result{}, fmt.Errorf("start %s: executable file not found in $PATH", cmd)
	}
	return r.Result, r.Err
}

// Calls returns the commands run so far, in order of arrival.
func (f *Fake) Calls() []proc.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]proc.Command(nil), f.calls...)
}

// Called reports whether line was run.
func (f *Fake) Called(line string) bool {
	for _, c := range f.Calls() {
		if c.String() == line {
			return true
		}
	}
	return false
}
