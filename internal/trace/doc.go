// Package trace records what the semantic core is doing while it runs.
//
// A Tracer is carried through context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "bodies", 0)
//	defer span.End("")
//
// Levels filter scopes: phase shows driver and pass boundaries, detail adds
// one span per top-level declaration, debug adds node level marks such as
// every template instantiation and copier lookup. The error level streams
// nothing; it keeps a Recorder that Replay writes out after an internal
// error.
package trace
