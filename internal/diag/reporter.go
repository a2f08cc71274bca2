package diag

import "github.com/rhysd/Dachs-sub001/internal/source"

// Reporter receives diagnostics from the phases. Phases never look at what
// was reported before; counting and limits belong to the receiver.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportFunc adapts a function to Reporter.
type ReportFunc func(d Diagnostic)

func (f ReportFunc) Report(d Diagnostic) { f(d) }

// ReportBuilder accumulates notes before the diagnostic is emitted.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder binds a diagnostic to r.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: New(sev, code, primary, msg)}
}

// ReportError starts an error.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

// ReportWarning starts a warning.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(sp, msg)
	return b
}

// Emit sends the diagnostic once; later calls are ignored.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	b.emitted = true
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
}

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// PromoteReporter turns warnings into errors (warnings_as_errors).
type PromoteReporter struct{ Next Reporter }

func (r PromoteReporter) Report(d Diagnostic) {
	if d.Severity == SevWarning {
		d.Severity = SevError
	}
	if r.Next != nil {
		r.Next.Report(d)
	}
}

type dedupKey struct {
	code Code
	sev  Severity
	span source.Span
	msg  string
}

// DedupReporter drops repeats of a diagnostic with the same code, severity,
// primary span and message. Every instance of a template rechecks the same
// body, so its errors would otherwise appear once per instance.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := dedupKey{code: d.Code, sev: d.Severity, span: d.Primary, msg: d.Message}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
