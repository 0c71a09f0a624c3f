package config

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"ccstatusline/internal/gitstate"
)

type Config struct {
	UsageRunner string
	UsageTool   string
	HostCLI     string
	GitBin      string
	GitBackend  gitstate.Backend

	ShowGit     bool
	ShowVersion bool
	Color       bool
	NoColor     bool
	Debug       bool
	ShowHelp    bool

	// Timeout bounds each helper process; zero waits forever.
	Timeout time.Duration
}

const (
	keyRunner      = "STATUSLINE_USAGE_RUNNER"
	keyTool        = "STATUSLINE_USAGE_TOOL"
	keyHostCLI     = "STATUSLINE_HOST_CLI"
	keyGitBin      = "STATUSLINE_GIT_BIN"
	keyGitBackend  = "STATUSLINE_GIT_BACKEND"
	keyShowGit     = "STATUSLINE_SHOW_GIT"
	keyShowVersion = "STATUSLINE_SHOW_VERSION"
	keyColor       = "STATUSLINE_COLOR"
	keyTimeout     = "STATUSLINE_TIMEOUT"
	keyDebug       = "STATUSLINE_DEBUG"
)

var envKeys = []string{
	keyRunner, keyTool, keyHostCLI, keyGitBin, keyGitBackend,
	keyShowGit, keyShowVersion, keyColor, keyTimeout, keyDebug,
}

func defaults() Config {
	return Config{
		UsageRunner: "bunx",
		UsageTool:   "ccusage",
		HostCLI:     "claude",
		GitBin:      "git",
		GitBackend:  gitstate.BackendExec,
		ShowGit:     true,
		ShowVersion: true,
	}
}

// Load resolves settings: defaults < ~/.claude/statusline.env < env < args.
// Malformed values are ignored rather than reported.
func Load(args []string) Config {
	cfg := defaults()

	// Save env overrides before loading config file
	envOverrides := map[string]string{}
	for _, k := range envKeys {
		if v, ok := os.LookupEnv(k); ok {
			envOverrides[k] = v
		}
	}

	cfgPath := filepath.Join(os.Getenv("HOME"), ".claude", "statusline.env")
	merged := loadEnvFile(cfgPath)
	for k, v := range envOverrides {
		merged[k] = v
	}

	applyString(merged, keyRunner, &cfg.UsageRunner)
	applyString(merged, keyTool, &cfg.UsageTool)
	applyString(merged, keyHostCLI, &cfg.HostCLI)
	applyString(merged, keyGitBin, &cfg.GitBin)
	applyBackend(merged[keyGitBackend], &cfg.GitBackend)
	applyBool(merged, keyShowGit, &cfg.ShowGit)
	applyBool(merged, keyShowVersion, &cfg.ShowVersion)
	applyBool(merged, keyColor, &cfg.Color)
	applyBool(merged, keyDebug, &cfg.Debug)
	if d, err := time.ParseDuration(merged[keyTimeout]); err == nil && d >= 0 {
		cfg.Timeout = d
	}

	// CLI args (highest priority)
	fs := newFlagSet()
	_ = fs.Parse(args)

	if fs.Changed("runner") {
		cfg.UsageRunner, _ = fs.GetString("runner")
	}
	if fs.Changed("tool") {
		cfg.UsageTool, _ = fs.GetString("tool")
	}
	if fs.Changed("host-cli") {
		cfg.HostCLI, _ = fs.GetString("host-cli")
	}
	if fs.Changed("git-bin") {
		cfg.GitBin, _ = fs.GetString("git-bin")
	}
	if fs.Changed("git-backend") {
		v, _ := fs.GetString("git-backend")
		applyBackend(v, &cfg.GitBackend)
	}
	if fs.Changed("timeout") {
		if d, _ := fs.GetDuration("timeout"); d >= 0 {
			cfg.Timeout = d
		}
	}
	if v, _ := fs.GetBool("no-git"); v {
		cfg.ShowGit = false
	}
	if v, _ := fs.GetBool("no-version"); v {
		cfg.ShowVersion = false
	}
	if v, _ := fs.GetBool("color"); v {
		cfg.Color = true
	}
	if v, _ := fs.GetBool("no-color"); v {
		cfg.NoColor = true
	}
	if v, _ := fs.GetBool("debug"); v {
		cfg.Debug = true
	}
	if v, _ := fs.GetBool("help"); v {
		cfg.ShowHelp = true
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.NoColor = true
	}
	if _, ok := os.LookupEnv("STATUSLINE_NO_COLOR"); ok {
		cfg.NoColor = true
	}

	return cfg
}

// UseColor reports whether ANSI styling should be emitted.
func (c Config) UseColor() bool {
	return c.Color && !c.NoColor
}

// Usage lists the accepted flags.
func Usage() string {
	return newFlagSet().FlagUsages()
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("statusline", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.ParseErrorsWhitelist.UnknownFlags = true

	d := defaults()
	fs.String("runner", d.UsageRunner, "package runner used to launch the usage reporter")
	fs.String("tool", d.UsageTool, "usage reporter package name")
	fs.String("host-cli", d.HostCLI, "host CLI queried with --version")
	fs.String("git-bin", d.GitBin, "git binary")
	fs.String("git-backend", string(d.GitBackend), "branch lookup backend: exec or gogit")
	fs.Duration("timeout", 0, "deadline for each helper process (0 = none)")
	fs.Bool("no-git", false, "hide git branch")
	fs.Bool("no-version", false, "hide host CLI version")
	fs.Bool("color", false, "colorize segments with ANSI escapes")
	fs.Bool("no-color", false, "disable colors even if enabled elsewhere")
	fs.Bool("debug", false, "log helper failures to stderr")
	fs.BoolP("help", "h", false, "show this help")
	return fs
}

func applyString(m map[string]string, key string, target *string) {
	if v := strings.TrimSpace(m[key]); v != "" {
		*target = v
	}
}

func applyBool(m map[string]string, key string, target *bool) {
	v, ok := m[key]
	if !ok {
		return
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
		*target = b
	}
}

func applyBackend(v string, target *gitstate.Backend) {
	if v == "" {
		return
	}
	if b, err := gitstate.ParseBackend(v); err == nil {
		*target = b
	}
}

// loadEnvFile reads KEY=VALUE lines. `export` prefixes, quoted values and
// trailing " # ..." comments are accepted so the file can also be sourced.
func loadEnvFile(path string) map[string]string {
	vals := make(map[string]string)
	data, err := os.ReadFile(path)
	if err != nil {
		return vals
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		vals[strings.TrimSpace(k)] = envValue(v)
	}
	return vals
}

func envValue(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	if i := strings.Index(v, " #"); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
