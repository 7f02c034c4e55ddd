// Package trace records spans of a renamer run: the CLI command, the load
// and resolve passes, and the per-file work below them.
//
// Tracing is off unless --trace is given:
//
//	renamer rename --trace=- --trace-level=detail src/main.rs:3:8 new_name
//
// A Tracer travels through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.Start(ctx, trace.ScopePass, "resolve")
//	defer span.End("")
//
// StreamTracer writes events as they happen (text or NDJSON), RingTracer keeps
// the last events in memory for a dump after a failure, MultiTracer fans out
// to both.
package trace
