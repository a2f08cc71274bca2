package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer is a sink for trace events. Implementations are goroutine-safe.
type Tracer interface {
	// Enabled reports whether events of scope are kept at all; Begin and
	// Mark skip the allocation when it returns false.
	Enabled(scope Scope) bool
	Emit(ev *Event)
	Flush() error
	Close() error
}

// StorageMode determines how events are stored.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // immediate write
	ModeRing                          // bounded recorder, written by Replay
	ModeBoth                          // stream + recorder
)

var modeNames = [...]string{ModeStream: "stream", ModeRing: "ring", ModeBoth: "both"}

func (m StorageMode) String() string {
	if int(m) < len(modeNames) && modeNames[m] != "" {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode converts a string to StorageMode.
func ParseMode(s string) (StorageMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stream", "":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	default:
		return ModeStream, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
	}
}

// Config holds tracer configuration.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format
	Output     io.Writer // takes precedence over OutputPath
	OutputPath string    // "-" or "" for stderr
	RingSize   int
}

// New creates a Tracer for cfg. LevelError always records, whatever the
// mode, since there is nothing to stream.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Format == FormatAuto {
		cfg.Format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") {
			cfg.Format = FormatNDJSON
		}
	}
	mode := cfg.Mode
	if cfg.Level == LevelError {
		mode = ModeRing
	}
	if mode < ModeStream || mode > ModeBoth {
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}

	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	switch mode {
	case ModeStream:
		return NewStream(w, cfg.Level, cfg.Format), nil
	case ModeRing:
		return NewRecorder(cfg.RingSize, cfg.Level, w, cfg.Format), nil
	default:
		// the stream owns w
		rec := NewRecorder(cfg.RingSize, cfg.Level, w, cfg.Format)
		rec.closeOut = false
		return &fanout{sinks: []Tracer{NewStream(w, cfg.Level, cfg.Format), rec}, rec: rec}, nil
	}
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// closeOutput closes w unless it is a standard stream.
func closeOutput(w io.Writer) error {
	if w == nil || w == os.Stderr || w == os.Stdout {
		return nil
	}
	if c, ok := w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
