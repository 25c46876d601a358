package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pytutor/internal/session"
)

type echoRunner struct {
	calls int
}

func (r *echoRunner) Execute(ctx context.Context, src string) (string, error) {
	r.calls++
	return "ran: " + src, nil
}

func newTestServer(t *testing.T, out io.Writer, runner session.Runner) *Server {
	t.Helper()
	return NewServer(bytes.NewReader(nil), out, ServerOptions{
		Debounce: time.Hour,
		Explicit: true,
		Runner:   runner,
	})
}

func call(t *testing.T, handler func(*rpcMessage) error, method string, id string, params any) {
	t.Helper()
	payload, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal %s: %v", method, err)
	}
	msg := &rpcMessage{Method: method, Params: payload}
	if id != "" {
		msg.ID = json.RawMessage(id)
	}
	if err := handler(msg); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

// flush runs the pending debounced pass of uri right away.
func flush(t *testing.T, s *Server, uri string) {
	t.Helper()
	s.mu.Lock()
	doc, ok := s.docs[canonicalURI(uri)]
	var seq uint64
	if ok {
		seq = doc.seq
	}
	s.mu.Unlock()
	s.stopTimers()
	if !ok {
		t.Fatalf("document %s is not open", uri)
	}
	s.runDiagnostics(canonicalURI(uri), seq)
}

func readAll(t *testing.T, out *bytes.Buffer) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(out.Bytes()))
	var msgs []rpcMessage
	for {
		payload, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return msgs
		}
		if err != nil {
			t.Fatalf("read message: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		msgs = append(msgs, msg)
	}
}

func lastPublish(t *testing.T, msgs []rpcMessage) publishDiagnosticsParams {
	t.Helper()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Method != "textDocument/publishDiagnostics" {
			continue
		}
		var params publishDiagnosticsParams
		if err := json.Unmarshal(msgs[i].Params, &params); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		return params
	}
	t.Fatalf("no publishDiagnostics among %d messages", len(msgs))
	return publishDiagnosticsParams{}
}

func findCode(list []lspDiagnostic, code string) *lspDiagnostic {
	for i := range list {
		if list[i].Code == code {
			return &list[i]
		}
	}
	return nil
}

func testURI(t *testing.T) string {
	return pathToURI(filepath.Join(t.TempDir(), "lesson.py"))
}

func TestPublishDiagnosticsMapping(t *testing.T) {
	uri := testURI(t)
	var out bytes.Buffer
	server := newTestServer(t, &out, nil)

	call(t, server.handleDidOpen, "textDocument/didOpen", "", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: "print(1)\n"},
	})
	call(t, server.handleDidChange, "textDocument/didChange", "", didChangeTextDocumentParams{
		TextDocument: versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{
			Range: &lspRange{Start: position{Line: 1}, End: position{Line: 1}},
			Text:  "x = 10 / 0",
		}},
	})
	flush(t, server, uri)

	params := lastPublish(t, readAll(t, &out))
	if params.URI != uri {
		t.Fatalf("expected uri %q, got %q", uri, params.URI)
	}
	if params.Version == nil || *params.Version != 2 {
		t.Fatalf("expected version 2, got %v", params.Version)
	}
	got := findCode(params.Diagnostics, "ZeroDivisionError")
	if got == nil {
		t.Fatalf("expected ZeroDivisionError, got %+v", params.Diagnostics)
	}
	want := lspRange{Start: position{Line: 1}, End: position{Line: 1, Character: 10}}
	if got.Range != want {
		t.Fatalf("unexpected range: %+v", got.Range)
	}
	if got.Severity != 1 || got.Source != "pytutor" || got.Message != "division by zero" {
		t.Fatalf("unexpected diagnostic: %+v", got)
	}
}

func TestPublishRespectsMaxDiagnostics(t *testing.T) {
	uri := testURI(t)
	var out bytes.Buffer
	server := newTestServer(t, &out, nil)
	call(t, server.handleDidChangeConfiguration, "workspace/didChangeConfiguration", "", didChangeConfigurationParams{
		Settings: json.RawMessage(`{"pytutor":{"maxDiagnostics":1}}`),
	})
	call(t, server.handleDidOpen, "textDocument/didOpen", "", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: "a = 1 / 0\nb = 2 / 0"},
	})
	flush(t, server, uri)

	if params := lastPublish(t, readAll(t, &out)); len(params.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(params.Diagnostics))
	}
}

func TestStalePassDoesNotPublish(t *testing.T) {
	uri := testURI(t)
	var out bytes.Buffer
	server := newTestServer(t, &out, nil)
	call(t, server.handleDidOpen, "textDocument/didOpen", "", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: "x = 1 / 0"},
	})
	server.stopTimers()
	server.runDiagnostics(canonicalURI(uri), 0)
	if out.Len() != 0 {
		t.Fatalf("stale pass published: %s", out.String())
	}
}

func TestHoverShowsKnowledgeCard(t *testing.T) {
	uri := testURI(t)
	var out bytes.Buffer
	server := newTestServer(t, &out, nil)
	call(t, server.handleDidOpen, "textDocument/didOpen", "", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: "print(1)\nv = 10 / 0"},
	})
	flush(t, server, uri)

	server.mu.Lock()
	doc := server.docs[canonicalURI(uri)]
	server.mu.Unlock()

	h := buildHover(doc, position{Line: 1, Character: 3})
	if h == nil {
		t.Fatal("expected hover on the flagged line")
	}
	if h.Contents.Kind != "markdown" || !strings.Contains(h.Contents.Value, "**ZeroDivisionError**: division by zero") {
		t.Fatalf("unexpected hover: %q", h.Contents.Value)
	}
	if h.Range == nil || h.Range.End.Character != 10 {
		t.Fatalf("unexpected hover range: %+v", h.Range)
	}
	if h := buildHover(doc, position{Line: 0}); h != nil {
		t.Fatalf("expected no hover on a clean line, got %q", h.Contents.Value)
	}
}

func runCommand(t *testing.T, server *Server, out *bytes.Buffer, command, uri string) runResult {
	t.Helper()
	out.Reset()
	call(t, server.handleExecuteCommand, "workspace/executeCommand", "7", executeCommandParams{
		Command:   command,
		Arguments: []json.RawMessage{json.RawMessage(`"` + uri + `"`)},
	})
	server.background.Wait()
	msgs := readAll(t, out)
	if len(msgs) != 1 {
		t.Fatalf("expected one response, got %d", len(msgs))
	}
	var res runResult
	if err := json.Unmarshal(msgs[0].Result, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return res
}

func TestExecuteCommandIsGated(t *testing.T) {
	uri := testURI(t)
	var out bytes.Buffer
	runner := &echoRunner{}
	server := newTestServer(t, &out, runner)
	call(t, server.handleDidOpen, "textDocument/didOpen", "", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: "x = 1 / 0"},
	})
	server.stopTimers()

	res := runCommand(t, server, &out, commandRun, uri)
	if res.Error != session.ErrHasErrors.Error() || runner.calls != 0 {
		t.Fatalf("expected gated run, got %+v after %d calls", res, runner.calls)
	}

	res = runCommand(t, server, &out, commandForceRun, uri)
	if res.Error != "" || res.Output != "ran: x = 1 / 0" {
		t.Fatalf("unexpected forced run: %+v", res)
	}
}

func TestExecuteCommandRunsCleanDocument(t *testing.T) {
	uri := testURI(t)
	var out bytes.Buffer
	server := newTestServer(t, &out, &echoRunner{})
	call(t, server.handleDidOpen, "textDocument/didOpen", "", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: "print(1)"},
	})
	server.stopTimers()

	res := runCommand(t, server, &out, commandRun, uri)
	if res.Error != "" || res.Output != "ran: print(1)" {
		t.Fatalf("unexpected run: %+v", res)
	}
}

func TestDidCloseClearsDiagnostics(t *testing.T) {
	uri := testURI(t)
	var out bytes.Buffer
	server := newTestServer(t, &out, nil)
	call(t, server.handleDidOpen, "textDocument/didOpen", "", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: "x = 1 / 0"},
	})
	flush(t, server, uri)
	out.Reset()

	call(t, server.handleDidClose, "textDocument/didClose", "", didCloseTextDocumentParams{
		TextDocument: textDocumentIdentifier{URI: uri},
	})
	params := lastPublish(t, readAll(t, &out))
	if params.URI != uri || len(params.Diagnostics) != 0 {
		t.Fatalf("expected cleared diagnostics, got %+v", params)
	}
}

func frame(t *testing.T, msgs ...string) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range msgs {
		if err := writeMessage(&buf, []byte(m)); err != nil {
			t.Fatalf("frame: %v", err)
		}
	}
	return &buf
}

func TestRunLifecycle(t *testing.T) {
	in := frame(t,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","id":2,"method":"textDocument/definition","params":{}}`,
		`{"jsonrpc":"2.0","id":3,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	)
	var out bytes.Buffer
	server := NewServer(in, &out, ServerOptions{Explicit: true})
	if err := server.Run(context.Background()); !errors.Is(err, ErrExit) {
		t.Fatalf("expected ErrExit, got %v", err)
	}

	msgs := readAll(t, &out)
	if len(msgs) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(msgs))
	}
	var init initializeResult
	if err := json.Unmarshal(msgs[0].Result, &init); err != nil {
		t.Fatalf("decode initialize: %v", err)
	}
	if !init.Capabilities.HoverProvider || init.Capabilities.ExecuteCommandProvider == nil {
		t.Fatalf("unexpected capabilities: %+v", init.Capabilities)
	}
	if msgs[1].Error == nil || msgs[1].Error.Code != codeMethodNotFound {
		t.Fatalf("expected method not found, got %+v", msgs[1])
	}
}

func TestExitWithoutShutdown(t *testing.T) {
	in := frame(t, `{"jsonrpc":"2.0","method":"exit"}`)
	server := NewServer(in, io.Discard, ServerOptions{})
	if err := server.Run(context.Background()); !errors.Is(err, ErrExitWithoutShutdown) {
		t.Fatalf("expected ErrExitWithoutShutdown, got %v", err)
	}
}

func TestApplyChanges(t *testing.T) {
	text := "print('a')\nprint('b')"
	got := applyChanges(text, []textDocumentContentChangeEvent{{
		Range: &lspRange{Start: position{Line: 1, Character: 7}, End: position{Line: 1, Character: 8}},
		Text:  "c",
	}})
	if got != "print('a')\nprint('c')" {
		t.Fatalf("unexpected text %q", got)
	}
	if got := applyChanges(text, []textDocumentContentChangeEvent{{Text: "x"}}); got != "x" {
		t.Fatalf("full replacement failed: %q", got)
	}
	if n := utf16Len("s = '😀'\r"); n != 8 {
		t.Fatalf("utf16Len = %d, want 8", n)
	}
}
