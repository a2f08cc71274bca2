package trace

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// DefaultRecorderSize is used when Config.RingSize is not positive.
const DefaultRecorderSize = 4096

// Recorder keeps the last events in memory. It records declaration spans
// even at levels that stream less, so a replay after an internal error shows
// which declaration was being checked.
type Recorder struct {
	mu       sync.Mutex
	buf      []Event
	next     uint64 // total events recorded; buf[next%len] is overwritten next
	deepest  Scope
	out      io.Writer
	format   Format
	closeOut bool
}

// NewRecorder creates a recorder of the given capacity. out may be nil when
// the events are only inspected through Events.
func NewRecorder(capacity int, level Level, out io.Writer, format Format) *Recorder {
	if capacity <= 0 {
		capacity = DefaultRecorderSize
	}
	deepest := ScopeDecl
	if int(level) < len(levelScopes) && levelScopes[level] > deepest {
		deepest = levelScopes[level]
	}
	return &Recorder{buf: make([]Event, capacity), deepest: deepest, out: out, format: format, closeOut: true}
}

func (r *Recorder) Enabled(scope Scope) bool { return scope != 0 && scope <= r.deepest }

func (r *Recorder) Emit(ev *Event) {
	if !r.Enabled(ev.Scope) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	stored := *ev
	stored.Seq = r.next
	r.buf[(r.next-1)%uint64(len(r.buf))] = stored
}

// Events returns the retained events, oldest first.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := uint64(len(r.buf))
	start := uint64(0)
	if r.next > n {
		start = r.next - n
	}
	out := make([]Event, 0, r.next-start)
	for seq := start; seq < r.next; seq++ {
		out = append(out, r.buf[seq%n])
	}
	return out
}

// Dump writes the retained events to w.
func (r *Recorder) Dump(w io.Writer) error {
	events := r.Events()
	if len(events) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "-- last %d trace events --\n", len(events)); err != nil {
		return err
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], r.format)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) Flush() error { return nil }

func (r *Recorder) Close() error {
	if !r.closeOut {
		return nil
	}
	return closeOutput(r.out)
}

// fanout feeds a stream and a recorder.
type fanout struct {
	sinks []Tracer
	rec   *Recorder
}

func (f *fanout) Enabled(scope Scope) bool {
	for _, s := range f.sinks {
		if s.Enabled(scope) {
			return true
		}
	}
	return false
}

// Emit passes a private copy to every sink since each stamps its own Seq.
func (f *fanout) Emit(ev *Event) {
	for _, s := range f.sinks {
		cp := *ev
		s.Emit(&cp)
	}
}

func (f *fanout) Flush() error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (f *fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// RecorderOf returns the recorder behind t, or nil.
func RecorderOf(t Tracer) *Recorder {
	switch t := t.(type) {
	case *Recorder:
		return t
	case *fanout:
		return t.rec
	}
	return nil
}

// Replay writes the recorded events of t to its output. It does nothing for
// tracers without a recorder.
func Replay(t Tracer) error {
	rec := RecorderOf(t)
	if rec == nil || rec.out == nil {
		return nil
	}
	return rec.Dump(rec.out)
}
