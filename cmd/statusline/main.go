package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"ccstatusline/internal/config"
	"ccstatusline/internal/proc"
	"ccstatusline/internal/render"
	"ccstatusline/internal/session"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			// Never crash the render cycle
			_, _ = fmt.Fprint(stdout, "\n")
			code = 0
		}
	}()

	cfg := config.Load(args)

	if cfg.ShowHelp {
		printHelp(stderr)
		return 0
	}

	log := slog.New(slog.DiscardHandler)
	if cfg.Debug {
		log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	in, err := session.Parse(stdin)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "statusline: %v\n", err)
		return 1
	}

	wd, _ := os.Getwd()
	r := render.Renderer{
		Runner: proc.ExecRunner{},
		Config: cfg,
		Log:    log,
		Dir:    wd,
		Out:    stdout,
	}
	_, _ = fmt.Fprint(stdout, r.Render(context.Background(), in))
	return 0
}

func printHelp(w io.Writer) {
	_, _ = fmt.Fprint(w, `Usage: statusline [OPTIONS]
Reads the Claude Code session JSON from stdin, prints one status line:
  <model> | 📁 <dir> | 🌿 <branch> | ⚡ v<version>

Options:
`)
	_, _ = fmt.Fprint(w, config.Usage())
	_, _ = fmt.Fprint(w, `
Config precedence: CLI args > env vars > ~/.claude/statusline.env > defaults
`)
}
