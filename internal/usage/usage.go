// Package usage queries the ccusage reporter for a model/cost summary.
package usage

import (
	"context"
	"log/slog"
	"strings"

	"ccstatusline/internal/proc"
)

// ErrorLabel stands in for the reporter output when it printed nothing but
// complained on stderr, or could not be started at all.
const ErrorLabel = "ccusage: error"

// Reporter runs `<Runner> <Tool> statusline` with the session payload on stdin.
type Reporter struct {
	Runner proc.Runner
	Bin    string // package runner, e.g. bunx
	Tool   string // e.g. ccusage
	Log    *slog.Logger
}

func (r Reporter) command(raw []byte) proc.Command {
	return proc.Command{Name: r.Bin, Args: []string{r.Tool, "statusline"}, Stdin: raw}
}

// Report returns the reporter's trimmed stdout, falling back to ErrorLabel.
// raw is passed through byte for byte.
func (r Reporter) Report(ctx context.Context, raw []byte) string {
	if raw == nil {
		raw = []byte{}
	}
	cmd := r.command(raw)
	res, err := r.Runner.Run(ctx, cmd)
	if err != nil {
		r.logger().Debug("usage reporter failed", "cmd", cmd.String(), "err", err)
		return ErrorLabel
	}
	out := strings.TrimSpace(res.Stdout)
	if out == "" && res.Stderr != "" {
		r.logger().Debug("usage reporter wrote only stderr", "cmd", cmd.String(), "exit", res.ExitCode)
		return ErrorLabel
	}
	return out
}

func (r Reporter) logger() *slog.Logger {
	if r.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Log
}

// ModelLabel keeps the text before the first '|' or '$'.
// "Opus 4.6 | $1.23 session" -> "Opus 4.6"
func ModelLabel(out string) string {
	if i := strings.IndexAny(out, "|$"); i >= 0 {
		out = out[:i]
	}
	return strings.TrimSpace(out)
}
