package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Sources recorded per setting, for debug output.
const (
	SourceCLI     = "cli"
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// Validation errors returned by Resolve.
var (
	ErrInvalidMode     = errors.New("mode must be one of both, accelerated, baseline")
	ErrNegativeTimeout = errors.New("timeout must not be negative")
	ErrNegativeLoad    = errors.New("load_threshold must not be negative")
	ErrEmptyRuntime    = errors.New("runtime must not be empty")
	ErrBadInputExt     = errors.New("input_ext must start with a dot")
)

// CliFlags holds the command-line values. Set records which flags the user
// passed explicitly, keyed by the same names as the YAML keys.
type CliFlags struct {
	ConfigPath string
	Values     FileConfig
	Set        map[string]bool
}

// Resolved is the effective configuration of a run.
type Resolved struct {
	Runtime       string
	Root          string
	Mode          string
	NoJITFlag     string
	Timeout       time.Duration
	InputExt      string
	CheckStderr   bool
	ShowDiff      bool
	Theme         string
	NoColor       bool
	Quiet         bool
	HistoryPath   string
	LoadThreshold float64
	Debug         bool

	// ConfigPath is the file that was loaded, empty when none was found.
	ConfigPath string
	// Sources maps each YAML key to where its value came from.
	Sources map[string]string
}

// Resolve merges defaults, the config file, environment and CLI flags, in
// increasing priority, and validates the result.
func Resolve(cli CliFlags) (*Resolved, error) {
	path, err := findConfigPath(cli.ConfigPath)
	if err != nil {
		return nil, err
	}
	file, err := load(path)
	if err != nil {
		return nil, err
	}

	merged := file.cfg
	sources := make(map[string]string)
	for _, key := range keys {
		sources[key] = SourceDefault
		if file.set[key] {
			sources[key] = SourceFile
		}
	}

	applyEnv(&merged, sources)
	applyCLI(&merged, cli, sources)

	timeout, err := time.ParseDuration(merged.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout %q: %w", merged.Timeout, err)
	}

	resolved := &Resolved{
		Runtime:       merged.Runtime,
		Root:          merged.Root,
		Mode:          merged.Mode,
		NoJITFlag:     merged.NoJITFlag,
		Timeout:       timeout,
		InputExt:      merged.InputExt,
		CheckStderr:   merged.CheckStderr,
		ShowDiff:      merged.Diff,
		Theme:         merged.Theme,
		NoColor:       merged.NoColor,
		Quiet:         merged.Quiet,
		HistoryPath:   merged.History,
		LoadThreshold: merged.LoadThreshold,
		Debug:         merged.Debug,
		ConfigPath:    file.path,
		Sources:       sources,
	}

	if err := validate(resolved); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return resolved, nil
}

// keys lists every setting, in file order.
var keys = []string{
	"runtime", "root", "mode", "nojit_flag", "timeout", "input_ext", "check_stderr",
	"diff", "theme", "no_color", "quiet", "history", "load_threshold", "debug",
}

func applyEnv(cfg *FileConfig, sources map[string]string) {
	if v := os.Getenv("JITCHECK_RUNTIME"); v != "" {
		cfg.Runtime = v
		sources["runtime"] = SourceEnv
	}
	if v := os.Getenv("JITCHECK_ROOT"); v != "" {
		cfg.Root = v
		sources["root"] = SourceEnv
	}
	if v := os.Getenv("JITCHECK_TIMEOUT"); v != "" {
		cfg.Timeout = v
		sources["timeout"] = SourceEnv
	}
	if v := getEnvBool("JITCHECK_NO_COLOR", "NO_COLOR"); v != nil {
		cfg.NoColor = *v
		sources["no_color"] = SourceEnv
	}
	// CI only ever turns color off.
	if v := getEnvBool("CI"); v != nil && *v {
		cfg.NoColor = true
		sources["no_color"] = SourceEnv
	}
	if os.Getenv("JITCHECK_DEBUG") != "" {
		cfg.Debug = true
		sources["debug"] = SourceEnv
	}
}

func applyCLI(cfg *FileConfig, cli CliFlags, sources map[string]string) {
	v := cli.Values
	set := func(key string) bool {
		if cli.Set[key] {
			sources[key] = SourceCLI
			return true
		}
		return false
	}

	if set("runtime") {
		cfg.Runtime = v.Runtime
	}
	if set("root") {
		cfg.Root = v.Root
	}
	if set("mode") {
		cfg.Mode = v.Mode
	}
	if set("nojit_flag") {
		cfg.NoJITFlag = v.NoJITFlag
	}
	if set("timeout") {
		cfg.Timeout = v.Timeout
	}
	if set("input_ext") {
		cfg.InputExt = v.InputExt
	}
	if set("check_stderr") {
		cfg.CheckStderr = v.CheckStderr
	}
	if set("diff") {
		cfg.Diff = v.Diff
	}
	if set("theme") {
		cfg.Theme = v.Theme
	}
	if set("no_color") {
		cfg.NoColor = v.NoColor
	}
	if set("quiet") {
		cfg.Quiet = v.Quiet
	}
	if set("history") {
		cfg.History = v.History
	}
	if set("load_threshold") {
		cfg.LoadThreshold = v.LoadThreshold
	}
	if set("debug") {
		cfg.Debug = v.Debug
	}
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set, or a pointer to the boolean value.
func getEnvBool(names ...string) *bool {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

func validate(cfg *Resolved) error {
	switch cfg.Mode {
	case ModeBoth, ModeAccelerated, ModeBaseline:
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidMode, cfg.Mode)
	}
	if cfg.Runtime == "" {
		return ErrEmptyRuntime
	}
	if cfg.Timeout < 0 {
		return ErrNegativeTimeout
	}
	if cfg.LoadThreshold < 0 {
		return ErrNegativeLoad
	}
	if len(cfg.InputExt) < 2 || cfg.InputExt[0] != '.' {
		return fmt.Errorf("%w, got %q", ErrBadInputExt, cfg.InputExt)
	}
	return nil
}
