package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"pytutor/internal/trace"
)

const (
	commandRun      = "pytutor.run"
	commandForceRun = "pytutor.forceRun"
)

// handleExecuteCommand runs a document through the session. The reply is sent
// from a goroutine so the read loop keeps serving edits during the delay.
func (s *Server) handleExecuteCommand(msg *rpcMessage) error {
	var params executeCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	if params.Command != commandRun && params.Command != commandForceRun {
		return s.sendError(msg.ID, codeInvalidParams, fmt.Sprintf("unknown command %q", params.Command))
	}
	var uri string
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments[0], &uri); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "expected a document URI argument")
		}
	}
	uri = canonicalURI(uri)

	s.mu.Lock()
	doc, ok := s.docs[uri]
	var text string
	if ok {
		text = doc.text
	}
	ctx := s.baseCtx
	s.mu.Unlock()
	if !ok {
		return s.sendError(msg.ID, codeInvalidParams, fmt.Sprintf("document %s is not open", uri))
	}

	id := msg.ID
	force := params.Command == commandForceRun
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		res := s.runDocument(ctx, doc, text, force)
		if err := s.sendResponse(id, res); err != nil {
			s.logf("failed to send run result: %v", err)
		}
	}()
	return nil
}

func (s *Server) runDocument(ctx context.Context, doc *document, text string, force bool) (res runResult) {
	ctx, span := trace.StartSpan(ctx, trace.ScopeCommand, "executeCommand")
	defer func() {
		if res.Error != "" {
			span.Attr("error", res.Error)
		}
		span.End("")
	}()

	// the debounced pass may not have caught up with the latest edit
	if doc.sess.Text() != text {
		doc.sess.Update(ctx, text)
	}
	run := doc.sess.Run
	if force {
		run = doc.sess.ForceRun
	}
	output, err := run(ctx)
	if err != nil {
		return runResult{Output: output, Error: err.Error()}
	}
	return runResult{Output: output}
}
