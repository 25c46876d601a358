package lsp

import (
	"encoding/json"
	"strings"

	"pytutor/internal/diagfmt"
	"pytutor/internal/source"
)

func (s *Server) handleHover(msg *rpcMessage) error {
	var params hoverParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc, ok := s.docs[uri]
	s.mu.Unlock()
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	return s.sendResponse(msg.ID, buildHover(doc, params.Position))
}

// buildHover shows the knowledge-base card of every finding on the hovered
// line, taken from the last detection pass.
func buildHover(doc *document, pos position) *hover {
	line := pos.Line + 1
	var cards []string
	for _, d := range doc.sess.Errors() {
		if int(d.Line) == line {
			cards = append(cards, diagfmt.Tooltip(d))
		}
	}
	if len(cards) == 0 {
		return nil
	}
	buf := source.SplitLines(doc.sess.Text())
	return &hover{
		Contents: markupContent{
			Kind:  "markdown",
			Value: strings.Join(cards, "\n---\n\n"),
		},
		Range: &lspRange{
			Start: position{Line: pos.Line},
			End:   position{Line: pos.Line, Character: utf16Len(buf.Line(line))},
		},
	}
}
