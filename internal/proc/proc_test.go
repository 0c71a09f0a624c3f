package proc

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sh(script string) Command {
	return Command{Name: "sh", Args: []string{"-c", script}}
}

func TestRunCapturesStdoutAndStderr(t *testing.T) {
	res, err := ExecRunner{}.Run(context.Background(), sh("echo out; echo err >&2"))
	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.True(t, res.Success())
}

func TestRunForwardsStdinVerbatim(t *testing.T) {
	input := []byte("{\"workspace\": {}}\n  trailing  ")
	cmd := sh("cat")
	cmd.Stdin = input

	res, err := ExecRunner{}.Run(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, string(input), res.Stdout)
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	res, err := ExecRunner{}.Run(context.Background(), sh("echo nope >&2; exit 3"))
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Success())
	assert.Equal(t, "nope\n", res.Stderr)
}

func TestRunMissingBinary(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), Command{Name: "definitely-not-a-real-binary-xyz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start definitely-not-a-real-binary-xyz")
}

func TestRunChildIgnoresStdin(t *testing.T) {
	cmd := sh("echo done")
	cmd.Stdin = []byte(strings.Repeat("x", 1<<20))

	res, err := ExecRunner{}.Run(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "done\n", res.Stdout)
}

// Both pipes are filled far beyond the kernel buffer size; reading them one
// after the other would stall the child.
func TestRunDrainsLargeOutputOnBothStreams(t *testing.T) {
	script := `i=0; while [ $i -lt 20000 ]; do echo "stderr line $i" >&2; echo "stdout line $i"; i=$((i+1)); done`
	res, err := ExecRunner{}.Run(context.Background(), sh(script))
	require.NoError(t, err)
	assert.Equal(t, 20000, strings.Count(res.Stdout, "\n"))
	assert.Equal(t, 20000, strings.Count(res.Stderr, "\n"))
}

func TestRunWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	res, err := ExecRunner{Dir: dir}.Run(context.Background(), sh("pwd -P"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(res.Stdout), dirBase(dir)))
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExecRunner{}.Run(ctx, sh("sleep 5"))
	require.Error(t, err)
}

// sh is killed at the deadline but its sleep child keeps stdout open.
func TestRunDeadlineWithLingeringGrandchild(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := ExecRunner{}.Run(ctx, sh("sleep 3; echo hi"))
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestRunDeadlineNotReached(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := sh("cat")
	cmd.Stdin = []byte("payload")
	res, err := ExecRunner{}.Run(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "payload", res.Stdout)
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "bunx", Args: []string{"ccusage", "statusline"}}
	assert.Equal(t, "bunx ccusage statusline", c.String())
	assert.Equal(t, "git", Command{Name: "git"}.String())
}

func dirBase(p string) string {
	return p[strings.LastIndex(p, "/")+1:]
}
