package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rhysd/Dachs-sub001/internal/trace"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[sema]\nwarnings_as_errors = true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Sema.WarningsAsErrors {
		t.Fatalf("warnings_as_errors not decoded")
	}
	if cfg.Sema.MaxDiagnostics != DefaultMaxDiagnostics || cfg.Target.PointerSize != DefaultPointerSize {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.Path != path {
		t.Fatalf("path = %q", cfg.Path)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"[target]\npointer_size = 2\n":         "pointer_size",
		"[sema]\nmax_diagnostics = 0\n":        "max_diagnostics",
		"[sema]\nmax_instantiation_depth = -1": "max_instantiation_depth",
		"[trace]\nlevel = \"loud\"\n":          "[trace].level",
		"[sema]\nunknown = 1\n":                "unknown keys",
	}
	for body, want := range cases {
		path := writeManifest(t, t.TempDir(), body)
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("%q: err = %v, want mention of %q", body, err, want)
		}
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[target]\npointer_size = 4\n[trace]\nlevel = \"phase\"\nmode = \"ring\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if cfg.Target.PointerSize != 4 {
		t.Fatalf("pointer_size = %d", cfg.Target.PointerSize)
	}
	tc, err := cfg.TracerConfig()
	if err != nil {
		t.Fatalf("tracer config: %v", err)
	}
	if tc.Level != trace.LevelPhase || tc.Mode != trace.ModeRing {
		t.Fatalf("tracer config = %+v", tc)
	}
}

func TestDiscoverWithoutManifest(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if cfg.Path != "" || cfg.Sema.MaxInstantiationDepth != DefaultMaxInstantiationDepth {
		t.Fatalf("want defaults, got %+v", cfg)
	}
}
