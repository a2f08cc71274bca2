package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for dachs-sema.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the analyzer.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// String identifies the producer in handoff headers: the version plus the
// short commit when one was recorded.
func String() string {
	s := "dachs-sema " + strings.TrimSpace(Version)
	if c := strings.TrimSpace(GitCommit); c != "" {
		if len(c) > 12 {
			c = c[:12]
		}
		s += "+" + c
	}
	return s
}

// Banner colours the major, minor and patch components. Versions that do not
// look like semver are returned as is.
func Banner() string {
	v := strings.TrimSpace(Version)
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return v
	}
	out := versionMajorColor.Sprint(parts[0]) + "." + versionMinorColor.Sprint(parts[1]) + "." + versionPatchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}
