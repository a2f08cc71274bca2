package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rhysd/Dachs-sub001/internal/config"
)

// loadConfig reads dachs.toml (explicit or discovered) and applies the flags
// the user actually set on top of it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("max-diagnostics") {
		n, err := cmd.Flags().GetInt("max-diagnostics")
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
		if n <= 0 {
			return config.Config{}, fmt.Errorf("--max-diagnostics must be positive, got %d", n)
		}
		cfg.Sema.MaxDiagnostics = n
	}
	if cmd.Flags().Changed("max-depth") {
		n, err := cmd.Flags().GetInt("max-depth")
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to get max-depth flag: %w", err)
		}
		if n <= 0 {
			return config.Config{}, fmt.Errorf("--max-depth must be positive, got %d", n)
		}
		cfg.Sema.MaxInstantiationDepth = n
	}
	if cmd.Flags().Changed("warnings-as-errors") {
		on, err := cmd.Flags().GetBool("warnings-as-errors")
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
		}
		cfg.Sema.WarningsAsErrors = on
	}
	if cmd.Flags().Changed("pointer-size") {
		n, err := cmd.Flags().GetInt("pointer-size")
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to get pointer-size flag: %w", err)
		}
		if n != 4 && n != 8 {
			return config.Config{}, fmt.Errorf("--pointer-size must be 4 or 8, got %d", n)
		}
		cfg.Target.PointerSize = n
	}

	for flag, dst := range map[string]*string{
		"trace":       &cfg.Trace.Output,
		"trace-level": &cfg.Trace.Level,
		"trace-mode":  &cfg.Trace.Mode,
	} {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		v, err := cmd.Flags().GetString(flag)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to get %s flag: %w", flag, err)
		}
		*dst = v
	}
	// --trace without a level means phase tracing
	if cfg.Trace.Output != "" && !cmd.Flags().Changed("trace-level") && cfg.Trace.Level == "off" {
		cfg.Trace.Level = "phase"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
