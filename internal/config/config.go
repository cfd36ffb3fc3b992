package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	goyaml "gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory and the user config dir.
const FileName = ".jitcheck.yaml"

// Mode names accepted by the mode setting.
const (
	ModeBoth        = "both"
	ModeAccelerated = "accelerated"
	ModeBaseline    = "baseline"
)

// FileConfig mirrors .jitcheck.yaml. Tagged for both koanf (loading) and yaml (saving).
type FileConfig struct {
	Runtime       string  `koanf:"runtime" yaml:"runtime"`
	Root          string  `koanf:"root" yaml:"root"`
	Mode          string  `koanf:"mode" yaml:"mode"`
	NoJITFlag     string  `koanf:"nojit_flag" yaml:"nojit_flag"`
	Timeout       string  `koanf:"timeout" yaml:"timeout"`
	InputExt      string  `koanf:"input_ext" yaml:"input_ext"`
	CheckStderr   bool    `koanf:"check_stderr" yaml:"check_stderr"`
	Diff          bool    `koanf:"diff" yaml:"diff"`
	Theme         string  `koanf:"theme" yaml:"theme"`
	NoColor       bool    `koanf:"no_color" yaml:"no_color"`
	Quiet         bool    `koanf:"quiet" yaml:"quiet"`
	History       string  `koanf:"history" yaml:"history"`
	LoadThreshold float64 `koanf:"load_threshold" yaml:"load_threshold"`
	Debug         bool    `koanf:"debug" yaml:"debug"`
}

// Defaults returns the built-in settings, matching a plain checkout where the
// runtime is built as ./norn and the corpus lives under test/.
func Defaults() FileConfig {
	return FileConfig{
		Runtime:   "./norn",
		Root:      "test",
		Mode:      ModeBoth,
		NoJITFlag: "-nojit",
		Timeout:   "0s",
		InputExt:  ".norn",
		Theme:     "default",
	}
}

// ErrConfigExists is returned by WriteDefault rather than overwriting a file.
var ErrConfigExists = errors.New("config file already exists")

// loaded is a parsed config file plus the keys it actually set.
type loaded struct {
	cfg  FileConfig
	path string
	set  map[string]bool
}

// load reads path over the defaults. An empty path means no file.
func load(path string) (*loaded, error) {
	l := &loaded{cfg: Defaults(), path: path, set: map[string]bool{}}
	if path == "" {
		return l, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if err := k.Unmarshal("", &l.cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	for _, key := range k.Keys() {
		l.set[key] = true
	}
	return l, nil
}

// findConfigPath returns explicit if given, else the first existing default location.
func findConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}

	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}

	configHome, err := os.UserConfigDir()
	if err == nil && configHome != "" && configHome != "/" {
		xdgPath := filepath.Join(configHome, "jitcheck", FileName)
		if _, errStat := os.Stat(xdgPath); errStat == nil {
			return xdgPath, nil
		}
	}
	return "", nil
}

// WriteDefault saves the default configuration to path, refusing to overwrite.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	data, err := goyaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
