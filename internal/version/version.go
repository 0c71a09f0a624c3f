// Package version asks the host CLI for its version number.
package version

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"ccstatusline/internal/proc"
)

var leadingVersion = regexp.MustCompile(`^([\d.]+)`)

// Lookup runs `<bin> --version` and returns the dotted number it leads with,
// or "" on any failure. log may be nil.
func Lookup(ctx context.Context, r proc.Runner, bin string, log *slog.Logger) string {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	cmd := proc.Command{Name: bin, Args: []string{"--version"}}
	res, err := r.Run(ctx, cmd)
	switch {
	case err != nil:
		log.Debug("version lookup failed", "cmd", cmd.String(), "err", err)
		return ""
	case !res.Success():
		log.Debug("version lookup exited non-zero", "cmd", cmd.String(), "exit", res.ExitCode)
		return ""
	}
	return Parse(res.Stdout)
}

// Parse extracts "1.0.72" from "1.0.72 (Claude Code)".
func Parse(out string) string {
	m := leadingVersion.FindStringSubmatch(strings.TrimSpace(out))
	if m == nil {
		return ""
	}
	return m[1]
}
