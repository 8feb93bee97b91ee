// Package trace provides the tracing subsystem for moveflow.
//
// Tracing tracks driver phases, fixture files and per-body move gathering so
// slow or stuck runs can be diagnosed without a debugger.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	moveflow check --trace=- --trace-level=detail fixtures/
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer for crash dumps
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only crash dumps
//   - LevelPhase: driver phase boundaries
//   - LevelDetail: per-file and per-body spans
//   - LevelDebug: everything, including every recorded move and init
//
// # Scopes
//
//   - ScopeDriver: top-level CLI operations
//   - ScopeFile: per-fixture processing
//   - ScopeBody: per-function move gathering
//   - ScopeNode: individual statements, moves and inits
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeFile, "parse", parentID)
//	defer span.End("")
package trace
