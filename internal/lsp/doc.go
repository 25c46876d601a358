// Package lsp serves pytutor diagnostics over the Language Server Protocol
// on stdio. Open documents are re-detected after a debounce and published as
// whole-line diagnostics; hovering a flagged line shows the knowledge-base
// card, and the "pytutor.run" command runs the document through the mock
// executor.
package lsp
