package gitstate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"ccstatusline/internal/proc"
)

// Backend selects how the branch is discovered.
type Backend string

const (
	// BackendExec shells out to the git binary.
	BackendExec Backend = "exec"
	// BackendGoGit reads the repository in process.
	BackendGoGit Backend = "gogit"
)

// ParseBackend accepts "exec" or "gogit", case-insensitively.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendExec, BackendGoGit:
		return b, nil
	}
	return "", fmt.Errorf("unknown git backend %q (want exec or gogit)", s)
}

// Lookup finds the current branch name. The zero value is not usable.
type Lookup struct {
	Backend Backend
	Runner  proc.Runner
	Bin     string // git binary for BackendExec
	Dir     string // working tree probed by BackendGoGit
	Log     *slog.Logger
}

// Branch returns the short branch name, or "" when outside a repository,
// on a detached HEAD, or when anything goes wrong.
func (l Lookup) Branch(ctx context.Context) string {
	if l.Backend == BackendGoGit {
		return RepoBranch(l.Dir)
	}
	return l.execBranch(ctx)
}

// execBranch runs `git rev-parse --git-dir`; only its exit status matters.
// When it succeeds, `git branch --show-current` names the branch.
func (l Lookup) execBranch(ctx context.Context) string {
	check := proc.Command{Name: l.Bin, Args: []string{"rev-parse", "--git-dir"}}
	res, err := l.Runner.Run(ctx, check)
	if err != nil {
		l.logger().Debug("git check failed", "cmd", check.String(), "err", err)
		return ""
	}
	if !res.Success() {
		return ""
	}

	show := proc.Command{Name: l.Bin, Args: []string{"branch", "--show-current"}}
	res, err = l.Runner.Run(ctx, show)
	if err != nil {
		l.logger().Debug("git branch failed", "cmd", show.String(), "err", err)
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

func (l Lookup) logger() *slog.Logger {
	if l.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.Log
}

// RepoBranch opens the repository enclosing dir with go-git and reports the
// branch HEAD points at. Unborn branches are named like `git branch
// --show-current` names them.
func RepoBranch(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return ""
	}

	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return ""
	}
	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short()
	}
	return ""
}
