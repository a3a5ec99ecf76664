// Package diag defines the diagnostic model shared by all analysis phases.
//
// Diagnostic is the central record: a stable Code, a Severity, a message, the
// primary source.Span and optional secondary Notes. Phases emit diagnostics
// through a Reporter so producers stay decoupled from storage; BagReporter
// aggregates them into a Bag, which supports deterministic sorting and is the
// unit published per compilation pass.
//
// Codes are part of the external contract: once a code identifies a semantic
// condition it is never repurposed, only its message text may be refined.
// Rendering lives in internal/diagfmt; this package performs no IO.
package diag
