package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestString(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })

	Version = "1.2.3"
	GitCommit = ""
	if got := String(); got != "dachs-sema 1.2.3" {
		t.Fatalf("String() = %q", got)
	}
	GitCommit = "abc123def4567890"
	if got := String(); got != "dachs-sema 1.2.3+abc123def456" {
		t.Fatalf("String() = %q", got)
	}
}

func TestBanner(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = origVersion, origNoColor })
	color.NoColor = true

	cases := map[string]string{
		"0.1.0-dev":    "0.1.0-dev",
		"1.0.0-beta.1": "1.0.0-beta.1",
		"2.0.0":        "2.0.0",
		"nightly":      "nightly",
	}
	for in, want := range cases {
		Version = in
		if got := Banner(); got != want {
			t.Errorf("Banner(%q) = %q, want %q", in, got, want)
		}
	}
}
