// Copyright © 2024 The ELPS authors

package lsp

import (
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/coimbrox/progress-4gl-formatter/lint"
)

const diagnosticSource = "ablfmt"

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	item := params.TextDocument
	if !IsABL(item.LanguageID) {
		s.log.Debugf("ignoring %s with language %q", item.URI, item.LanguageID)
		return nil
	}
	doc := s.docs.Open(item.URI, item.LanguageID, int32(item.Version), item.Text)
	s.publish(doc)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	uri := params.TextDocument.URI
	if s.docs.Change(uri, int32(params.TextDocument.Version), content) == nil {
		return nil
	}

	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
	}
	s.debounce[uri] = time.AfterFunc(s.debounceDelay, func() {
		defer func() { _ = recover() }() // don't crash the server on lint panic
		if d := s.docs.Get(uri); d != nil {
			s.publish(d)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	s.cancelDebounce(params.TextDocument.URI)
	if doc := s.docs.Get(params.TextDocument.URI); doc != nil {
		s.publish(doc)
	}
	return nil
}

func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.cancelDebounce(uri)
	if s.docs.Get(uri) == nil {
		return nil
	}
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	s.docs.Close(uri)
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// publish lints a document and sends the resulting diagnostics to the
// client.
func (s *Server) publish(doc *Document) {
	doc.mu.Lock()
	content := doc.Content
	uri := doc.URI
	version := safeUint(int(doc.Version))
	doc.mu.Unlock()

	lintDiags, err := s.linter.LintFile([]byte(content), uriToPath(uri))
	if err != nil {
		s.log.Errorf("linting %s: %s", uri, err)
		return
	}
	diags := make([]protocol.Diagnostic, 0, len(lintDiags))
	lines := splitLines(content)
	for _, d := range lintDiags {
		diags = append(diags, convertLintDiagnostic(d, lines))
	}
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     &version,
		Diagnostics: diags,
	})
}

// convertLintDiagnostic converts a lint.Diagnostic to an LSP Diagnostic
// covering the trimmed text of the reported line.
func convertLintDiagnostic(d lint.Diagnostic, lines []string) protocol.Diagnostic {
	line := max(d.Pos.Line-1, 0)
	var start, end int
	if line < len(lines) {
		start, end = trimmedRange(lines[line])
	}
	sev := mapLintSeverity(d.Severity)
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: safeUint(line), Character: safeUint(start)},
			End:   protocol.Position{Line: safeUint(line), Character: safeUint(end)},
		},
		Severity: &sev,
		Source:   strPtr(diagnosticSource),
		Code:     &protocol.IntegerOrString{Value: d.Analyzer},
		Message:  d.Message,
	}
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return protocol.DiagnosticSeverityError
	case lint.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

func strPtr(s string) *string {
	return &s
}
