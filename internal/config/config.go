// Package config loads dachs.toml, the per-project analysis settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/rhysd/Dachs-sub001/internal/trace"
)

// FileName is the manifest looked up from the working directory upwards.
const FileName = "dachs.toml"

const (
	DefaultMaxDiagnostics        = 100
	DefaultMaxInstantiationDepth = 64
	DefaultPointerSize           = 8
)

// Config is the decoded manifest with defaults applied.
type Config struct {
	// Path is the manifest file, empty when defaults are used.
	Path   string       `toml:"-"`
	Sema   SemaConfig   `toml:"sema"`
	Target TargetConfig `toml:"target"`
	Trace  TraceConfig  `toml:"trace"`
}

type SemaConfig struct {
	MaxDiagnostics        int  `toml:"max_diagnostics"`
	MaxInstantiationDepth int  `toml:"max_instantiation_depth"`
	WarningsAsErrors      bool `toml:"warnings_as_errors"`
}

type TargetConfig struct {
	PointerSize int `toml:"pointer_size"`
}

// TraceConfig mirrors the --trace* flags. Level and Mode use the names
// accepted by trace.ParseLevel and trace.ParseMode.
type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

// Default returns the settings used when no manifest exists.
func Default() Config {
	return Config{
		Sema: SemaConfig{
			MaxDiagnostics:        DefaultMaxDiagnostics,
			MaxInstantiationDepth: DefaultMaxInstantiationDepth,
		},
		Target: TargetConfig{PointerSize: DefaultPointerSize},
		Trace:  TraceConfig{Level: "off", Mode: "stream"},
	}
}

// Find walks up from startDir to locate dachs.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest manifest above startDir, or the defaults.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes a manifest. Keys that are absent keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("sema", "max_diagnostics") && cfg.Sema.MaxDiagnostics <= 0 {
		return Config{}, fmt.Errorf("%s: [sema].max_diagnostics must be positive", path)
	}
	if meta.IsDefined("sema", "max_instantiation_depth") && cfg.Sema.MaxInstantiationDepth <= 0 {
		return Config{}, fmt.Errorf("%s: [sema].max_instantiation_depth must be positive", path)
	}
	if ps := cfg.Target.PointerSize; ps != 4 && ps != 8 {
		return Config{}, fmt.Errorf("%s: [target].pointer_size must be 4 or 8, got %d", path, ps)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the trace settings, which may also come from flags.
func (c Config) Validate() error {
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return fmt.Errorf("[trace].mode: %w", err)
	}
	return nil
}

// TracerConfig converts the [trace] section for trace.New.
func (c Config) TracerConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{Level: level, Mode: mode, OutputPath: c.Trace.Output}, nil
}
