package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type colorMode uint8

const (
	colorAuto colorMode = iota
	colorOn
	colorOff
)

func parseColorMode(s string) (colorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return colorAuto, nil
	case "on", "always":
		return colorOn, nil
	case "off", "never":
		return colorOff, nil
	default:
		return colorAuto, fmt.Errorf("invalid --color value %q (expected auto|on|off)", s)
	}
}

// enabled resolves auto against the output file.
func (m colorMode) enabled(out *os.File) bool {
	switch m {
	case colorOn:
		return true
	case colorOff:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return out != nil && isTerminal(out)
}

func readColor(cmd *cobra.Command, out *os.File) (bool, error) {
	raw, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := parseColorMode(raw)
	if err != nil {
		return false, err
	}
	return mode.enabled(out), nil
}
