// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/coimbrox/progress-4gl-formatter/formatter"
)

const testURI = "file:///src/test.p"

// mockContext returns a minimal glsp.Context for testing.
func mockContext() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {},
	}
}

// published collects diagnostics notifications; it is safe for use from
// debounce timers.
type published struct {
	mu     sync.Mutex
	params []*protocol.PublishDiagnosticsParams
}

func (p *published) all() []*protocol.PublishDiagnosticsParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*protocol.PublishDiagnosticsParams(nil), p.params...)
}

func (p *published) count() int {
	return len(p.all())
}

// capturingContext returns a context that captures published diagnostics.
func capturingContext() (*glsp.Context, *published) {
	p := &published{}
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				p.mu.Lock()
				p.params = append(p.params, params.(*protocol.PublishDiagnosticsParams))
				p.mu.Unlock()
			}
		},
	}
	return ctx, p
}

func openDoc(t *testing.T, s *Server, ctx *glsp.Context, text string) {
	t.Helper()
	err := s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        testURI,
			LanguageID: "progress",
			Version:    1,
			Text:       text,
		},
	})
	require.NoError(t, err)
}

func formatDoc(t *testing.T, s *Server, opts protocol.FormattingOptions) []protocol.TextEdit {
	t.Helper()
	edits, err := s.textDocumentFormatting(mockContext(), &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		Options:      opts,
	})
	require.NoError(t, err)
	return edits
}

// --- documents ---

func TestIsABL(t *testing.T) {
	for _, id := range []string{"progress", "abl", "OpenEdge ABL", "Progress 4GL", " ABL "} {
		assert.True(t, IsABL(id), id)
	}
	for _, id := range []string{"", "go", "openedge", "4gl"} {
		assert.False(t, IsABL(id), id)
	}
}

func TestDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	doc := store.Open(testURI, "abl", 1, "x = 1.")
	require.NotNil(t, doc)
	assert.Equal(t, "x = 1.", store.Get(testURI).Text())
	assert.Nil(t, store.Get("file:///other.p"))

	changed := store.Change(testURI, 2, "x = 2.")
	require.NotNil(t, changed)
	assert.Equal(t, "x = 2.", changed.Content)
	assert.Equal(t, int32(2), changed.Version)
	assert.Nil(t, store.Change("file:///other.p", 1, "y."), "change of an unopened document")

	assert.Equal(t, 1, store.Len())
	store.Close(testURI)
	assert.Nil(t, store.Get(testURI))
	assert.Equal(t, 0, store.Len())
}

// --- lifecycle ---

func TestInitialize(t *testing.T) {
	s := New()
	result, err := s.initialize(mockContext(), &protocol.InitializeParams{})
	require.NoError(t, err)
	init, ok := result.(protocol.InitializeResult)
	require.True(t, ok, "got %T", result)
	assert.NotNil(t, init.Capabilities.DocumentFormattingProvider)
	opts, ok := init.Capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	require.True(t, ok)
	require.NotNil(t, opts.Change)
	assert.Equal(t, protocol.TextDocumentSyncKindFull, *opts.Change)
	require.NotNil(t, init.ServerInfo)
	assert.Equal(t, serverName, init.ServerInfo.Name)
}

func TestExit(t *testing.T) {
	s := New()
	code := -1
	s.exitFn = func(c int) { code = c }
	require.NoError(t, s.shutdown(mockContext()))
	require.NoError(t, s.exit(mockContext()))
	assert.Equal(t, 0, code)
}

// --- diagnostics ---

func TestDiagnosticsOnOpen_UnclosedBlock(t *testing.T) {
	s := New()
	ctx, captured := capturingContext()
	openDoc(t, s, ctx, "x = 1.\n  do:\n    y = 2.\n")

	all := captured.all()
	require.Len(t, all, 1)
	assert.Equal(t, testURI, all[0].URI)
	require.Len(t, all[0].Diagnostics, 1)
	d := all[0].Diagnostics[0]
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 2},
		End:   protocol.Position{Line: 1, Character: 5},
	}, d.Range)
	require.NotNil(t, d.Severity)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *d.Severity)
	require.NotNil(t, d.Code)
	assert.Equal(t, "block-balance", d.Code.Value)
	assert.Contains(t, d.Message, "never closed")
}

func TestDiagnosticsOnOpen_Clean(t *testing.T) {
	s := New()
	ctx, captured := capturingContext()
	openDoc(t, s, ctx, "do:\nend.")
	all := captured.all()
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Diagnostics)
}

func TestDiagnosticsOnOpen_OtherLanguage(t *testing.T) {
	s := New()
	ctx, captured := capturingContext()
	err := s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///main.go", LanguageID: "go", Text: "package main"},
	})
	require.NoError(t, err)
	assert.Zero(t, captured.count())
	assert.Nil(t, s.docs.Get("file:///main.go"))
}

func TestDiagnosticsOnChange_Debounced(t *testing.T) {
	s := New(WithDebounce(5 * time.Millisecond))
	ctx, captured := capturingContext()
	openDoc(t, s, ctx, "do:\nend.")

	err := s.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "end."},
		},
	})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return captured.count() == 2 }, time.Second, 5*time.Millisecond)

	last := captured.all()[1]
	require.Len(t, last.Diagnostics, 1)
	assert.Contains(t, last.Diagnostics[0].Message, "END without an open block")
	require.NotNil(t, last.Version)
	assert.Equal(t, protocol.UInteger(2), *last.Version)
}

func TestDiagnosticsOnSave_Immediate(t *testing.T) {
	s := New(WithDebounce(time.Hour))
	ctx, captured := capturingContext()
	openDoc(t, s, ctx, "do:\nend.")
	before := captured.count()

	err := s.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	assert.Greater(t, captured.count(), before, "save should trigger immediate diagnostics publish")
}

func TestDiagnosticsOnClose_Cleared(t *testing.T) {
	s := New()
	ctx, captured := capturingContext()
	openDoc(t, s, ctx, "do:\n")

	err := s.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	all := captured.all()
	require.Len(t, all, 2)
	assert.Empty(t, all[1].Diagnostics, "close should clear diagnostics")
	assert.Nil(t, s.docs.Get(testURI), "document should be removed from store")
}

// --- formatting ---

func TestFormatting(t *testing.T) {
	s := New()
	openDoc(t, s, mockContext(), "DO:\nx = 1.\nEND.")

	edits := formatDoc(t, s, protocol.FormattingOptions{})
	require.Len(t, edits, 1)
	assert.Equal(t, "do:\n  x = 1.\nend.", edits[0].NewText)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 2, Character: 4},
	}, edits[0].Range)
}

func TestFormattingAlreadyFormatted(t *testing.T) {
	s := New()
	openDoc(t, s, mockContext(), "do:\n  x = 1.\nend.\n")
	assert.Nil(t, formatDoc(t, s, protocol.FormattingOptions{}))
}

func TestFormattingUnknownDocument(t *testing.T) {
	assert.Nil(t, formatDoc(t, New(), protocol.FormattingOptions{}))
}

func TestFormattingTabSize(t *testing.T) {
	s := New()
	openDoc(t, s, mockContext(), "do:\nx = 1.\nend.")

	edits := formatDoc(t, s, protocol.FormattingOptions{"tabSize": float64(4), "insertSpaces": true})
	require.Len(t, edits, 1)
	assert.Equal(t, "do:\n    x = 1.\nend.", edits[0].NewText)

	edits = formatDoc(t, s, protocol.FormattingOptions{"tabSize": float64(99)})
	require.Len(t, edits, 1)
	assert.Equal(t, "do:\n  x = 1.\nend.", edits[0].NewText, "invalid tabSize falls back to the configured size")
}

func TestFormattingWithFormatter(t *testing.T) {
	cfg := formatter.DefaultConfig()
	cfg.IndentSize = 3
	f, err := formatter.New(cfg)
	require.NoError(t, err)

	s := New(WithFormatter(f))
	openDoc(t, s, mockContext(), "do:\nx = 1.\nend.")
	edits := formatDoc(t, s, nil)
	require.Len(t, edits, 1)
	assert.Equal(t, "do:\n   x = 1.\nend.", edits[0].NewText)
}

func TestFormattingSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	t.Cleanup(func() {
		assert.NoError(t, tp.Shutdown(context.Background()), "TracerProvider shutdown")
	})

	s := New(WithTracerProvider(tp))
	openDoc(t, s, mockContext(), "DO:\nEND.")
	require.Len(t, formatDoc(t, s, nil), 1)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "textDocument/formatting", spans[0].Name)
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range spans[0].Attributes {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, testURI, attrs["document.uri"].AsString())
	assert.Equal(t, int64(2), attrs["document.lines"].AsInt64())
	assert.True(t, attrs["format.edited"].AsBool())
}

// --- positions ---

func TestEndPosition(t *testing.T) {
	tests := []struct {
		text string
		want protocol.Position
	}{
		{"", protocol.Position{}},
		{"a\nbc", protocol.Position{Line: 1, Character: 2}},
		{"a\n", protocol.Position{Line: 1, Character: 0}},
		{"é😀", protocol.Position{Line: 0, Character: 3}},
		{"a\rb", protocol.Position{Line: 1, Character: 1}},
		{"a\r\nbc", protocol.Position{Line: 1, Character: 2}},
		{"a\r\n\rx\ny", protocol.Position{Line: 3, Character: 1}},
		{"a\r", protocol.Position{Line: 1, Character: 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, endPosition(tt.text), "%q", tt.text)
	}
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{""}, splitLines(""))
	assert.Equal(t, []string{"a", "b", "c", "d", ""}, splitLines("a\r\nb\rc\nd\n"))
	assert.Equal(t, []string{"a", "", "b"}, splitLines("a\n\rb"))
}

func TestTrimmedRange(t *testing.T) {
	start, end := trimmedRange("\t  end.  ")
	assert.Equal(t, 3, start)
	assert.Equal(t, 7, end)

	start, end = trimmedRange("")
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}

func TestURIToPath(t *testing.T) {
	assert.Equal(t, "/src/test.p", uriToPath(testURI))
	assert.Equal(t, "untitled:1", uriToPath("untitled:1"))
}
