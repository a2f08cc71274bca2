package trace

import (
	"io"
	"sync"
)

// Stream writes events as they arrive.
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	seq    uint64
}

func NewStream(w io.Writer, level Level, format Format) *Stream {
	return &Stream{w: w, level: level, format: format}
}

func (t *Stream) Enabled(scope Scope) bool { return t.level.ShouldEmit(scope) }

func (t *Stream) Emit(ev *Event) {
	if !t.Enabled(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	ev.Seq = t.seq
	// trace output must never fail the analysis
	_, _ = t.w.Write(FormatEvent(ev, t.format)) //nolint:errcheck
}

func (t *Stream) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes the writer unless it is stdout or stderr.
func (t *Stream) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	return closeOutput(t.w)
}

type nopTracer struct{}

func (nopTracer) Enabled(Scope) bool { return false }
func (nopTracer) Emit(*Event)        {}
func (nopTracer) Flush() error       { return nil }
func (nopTracer) Close() error       { return nil }

// Nop discards everything.
var Nop Tracer = nopTracer{}
