package render

import (
	"context"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"ccstatusline/internal/config"
	"ccstatusline/internal/format"
	"ccstatusline/internal/gitstate"
	"ccstatusline/internal/proc"
	"ccstatusline/internal/session"
	"ccstatusline/internal/usage"
	"ccstatusline/internal/version"
)

// Renderer gathers every segment of the statusline and formats it.
type Renderer struct {
	Runner proc.Runner
	Config config.Config
	Log    *slog.Logger
	// Dir is where the gogit backend looks for a repository.
	Dir string
	// Out receives the rendered line; it only matters for color detection.
	Out io.Writer
}

// Render produces the single statusline, newline terminated.
// Only the usage reporter is awaited before the other lookups start; version
// and branch run side by side and never fail the render.
func (r Renderer) Render(ctx context.Context, in session.Input) string {
	log := r.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	cfg := r.Config

	reporter := usage.Reporter{Runner: r.Runner, Bin: cfg.UsageRunner, Tool: cfg.UsageTool, Log: log}
	rctx, cancel := r.bounded(ctx)
	out := reporter.Report(rctx, in.Raw)
	cancel()

	fields := format.Fields{
		Model: usage.ModelLabel(out),
		Dir:   format.Basename(in.CurrentDir),
	}

	// Each goroutine owns one field; errgroup is used only to join.
	var g errgroup.Group
	if cfg.ShowVersion {
		g.Go(func() error {
			vctx, cancel := r.bounded(ctx)
			defer cancel()
			fields.Version = version.Lookup(vctx, r.Runner, cfg.HostCLI, log)
			return nil
		})
	}
	if cfg.ShowGit {
		g.Go(func() error {
			bctx, cancel := r.bounded(ctx)
			defer cancel()
			lookup := gitstate.Lookup{
				Backend: cfg.GitBackend,
				Runner:  r.Runner,
				Bin:     cfg.GitBin,
				Dir:     r.Dir,
				Log:     log,
			}
			fields.Branch = lookup.Branch(bctx)
			return nil
		})
	}
	_ = g.Wait()

	log.Debug("statusline fields", "model", fields.Model, "dir", fields.Dir,
		"branch", fields.Branch, "version", fields.Version)

	if cfg.UseColor() {
		return format.Paint(fields, palette(r.Out)) + "\n"
	}
	return format.Line(fields) + "\n"
}

func (r Renderer) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Config.Timeout > 0 {
		return context.WithTimeout(ctx, r.Config.Timeout)
	}
	return context.WithCancel(ctx)
}

// palette forces ANSI output: the host reads our stdout through a pipe, so
// terminal detection would always strip colors.
func palette(w io.Writer) format.Palette {
	if w == nil {
		w = io.Discard
	}
	re := lipgloss.NewRenderer(w)
	re.SetColorProfile(termenv.ANSI)

	style := func(color string) func(string) string {
		st := re.NewStyle().Foreground(lipgloss.Color(color))
		return func(s string) string { return st.Render(s) }
	}
	return format.Palette{
		Model:   style("6"),
		Dir:     style("4"),
		Branch:  style("5"),
		Version: style("3"),
	}
}
