package lsp

import (
	"time"

	"pytutor/internal/diag"
	"pytutor/internal/source"
	"pytutor/internal/trace"
)

const diagnosticSource = "pytutor"

// scheduleDiagnostics restarts the debounce timer of one document. Only the
// pass started for the latest edit publishes.
func (s *Server) scheduleDiagnostics(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok || s.shutdownRequested {
		return
	}
	doc.seq++
	seq := doc.seq
	if doc.timer != nil && doc.timer.Stop() {
		s.background.Done()
	}
	s.background.Add(1)
	doc.timer = time.AfterFunc(s.debounce, func() {
		defer s.background.Done()
		s.runDiagnostics(uri, seq)
	})
}

func (s *Server) runDiagnostics(uri string, seq uint64) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok || doc.seq != seq {
		s.mu.Unlock()
		return
	}
	text, version, sess := doc.text, doc.version, doc.sess
	ctx := s.baseCtx
	limit := s.maxDiagnostics
	verbose := s.traceLSP
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	ctx, span := trace.StartSpan(ctx, trace.ScopeCommand, "publishDiagnostics")
	defer span.End("")
	found := sess.Update(ctx, text)

	s.mu.Lock()
	// a newer edit or a close arrived while detecting
	if current, ok := s.docs[uri]; !ok || current.seq != seq {
		s.mu.Unlock()
		if verbose {
			s.logf("discarding stale diagnostics: uri=%s seq=%d", uri, seq)
		}
		span.Attr("outcome", "stale")
		return
	}
	s.published[uri] = struct{}{}
	s.mu.Unlock()

	list := toLSPDiagnostics(source.SplitLines(text), found, limit)
	if verbose {
		s.logf("publish: uri=%s version=%d count=%d", uri, version, len(list))
	}
	if err := s.sendPublish(uri, &version, list); err != nil {
		s.logf("failed to publish diagnostics: %v", err)
	}
}

// toLSPDiagnostics maps findings onto whole-line ranges. Whole-file findings
// (line 0) have no place in an open buffer and are dropped.
func toLSPDiagnostics(buf source.Buffer, found []diag.Diagnostic, limit int) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(found))
	for _, d := range found {
		if limit > 0 && len(out) >= limit {
			break
		}
		if d.Line == 0 || int(d.Line) > buf.LineCount() {
			continue
		}
		line := int(d.Line) - 1
		out = append(out, lspDiagnostic{
			Range: lspRange{
				Start: position{Line: line},
				End:   position{Line: line, Character: utf16Len(buf.Line(int(d.Line)))},
			},
			Severity: lspSeverity(d.Severity),
			Code:     string(d.Kind),
			Source:   diagnosticSource,
			Message:  d.Message,
		})
	}
	return out
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	default:
		return 3
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.published))
	for uri := range s.published {
		uris = append(uris, uri)
	}
	clear(s.published)
	s.mu.Unlock()
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}
