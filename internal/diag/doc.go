// Package diag defines the diagnostic model shared by the fixture reader, the
// IR validator and the move-data bridge.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – compact numeric identifier with a stable string form (codes.go).
//   - Message – human oriented text; keep it short.
//   - Primary span – the source.Span pointing at the issue.
//   - Notes – optional secondary spans with extra context.
//
// Notes should be used sparingly: each note must add new context (e.g. "local
// declared here") rather than repeating the message.
//
// # Emitting diagnostics
//
// Producers report through a Reporter so emission stays decoupled from
// storage. ReportBuilder (ReportError/ReportWarning) lets a
// producer chain WithNote before calling Emit. BagReporter collects into a
// Bag, which supports limits, sorting and deduplication. DedupReporter drops
// repeated findings before they reach the next reporter.
//
// Rendering lives in internal/diagfmt; FormatShortDiagnostics here provides
// the stable one-line form used by tests and `check --format short`.
package diag
