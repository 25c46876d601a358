// Package diag defines the diagnostic model shared by the detector, the driver
// and every renderer.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Kind – the error category (kb.Kind), also the knowledge-base key.
//   - Message – human oriented text, may embed values taken from the line.
//   - Line – 1-based line number within the submitted source.
//   - Info – shared, read-only pointer to the knowledge-base entry, or nil.
//
// # Emitting diagnostics
//
// Checks emit through a Reporter so they stay decoupled from storage. Bag keeps
// diagnostics in emission order and never sorts or de-duplicates them: the
// order produced by a detection pass is part of its contract.
//
// # Scope
//
// Package diag does not format for terminals, encode JSON or talk to editors.
// Rendering lives in internal/diagfmt; the language server maps diagnostics in
// internal/lsp. FormatGoldenDiagnostics is the one exception, kept here so
// tests in every package can share a single golden form.
package diag
