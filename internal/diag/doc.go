// Package diag defines the diagnostic model shared by the semantic passes.
//
// Producers emit through a Reporter (usually a BagReporter over a Bag) using
// the ReportBuilder helpers:
//
//	diag.ReportError(r, diag.SemaDuplicateSymbol, span, msg).
//		WithNote(prev, "previous definition").
//		Emit()
//
// Diagnostic.Render produces the canonical text form
//
//	Semantic error at line:L, col:C
//	<message>
//
// used by the CLI and by golden tests. Colouring and source excerpts live in
// internal/diagfmt.
//
// Invariant violations inside the compiler are not diagnostics. They are
// raised with Internal (a panic carrying *InternalError) and surface as the
// error returned by the session.
package diag
