// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"
	"strings"

	"github.com/tliron/glsp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/coimbrox/progress-4gl-formatter/formatter"
)

// textDocumentFormatting formats the whole document and returns a single
// edit replacing it, or nil if no changes are needed. The tabSize option
// overrides the configured indent size.
func (s *Server) textDocumentFormatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	_, span := s.tracer.Start(context.Background(), "textDocument/formatting",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("document.uri", params.TextDocument.URI)))
	defer span.End()

	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		span.SetAttributes(attribute.Bool("format.edited", false))
		return nil, nil
	}
	content := doc.Text()

	f := s.formatterFor(params.Options)
	formatted := f.Format(content)
	edited := formatted != content
	span.SetAttributes(
		attribute.Int("document.lines", strings.Count(content, "\n")+1),
		attribute.Int("format.indent_size", f.Config().IndentSize),
		attribute.Bool("format.edited", edited),
	)
	if !edited {
		return nil, nil
	}
	return []protocol.TextEdit{
		{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   endPosition(content),
			},
			NewText: formatted,
		},
	}, nil
}

// formatterFor returns the server's formatter with the indent size taken
// from the client's tabSize option, when one is given and valid.
func (s *Server) formatterFor(opts protocol.FormattingOptions) *formatter.Formatter {
	size := 0
	switch v := opts["tabSize"].(type) {
	case float64:
		size = int(v)
	case int:
		size = v
	case protocol.UInteger:
		size = int(v)
	}
	if size <= 0 {
		return s.formatter
	}
	cfg := s.formatter.Config()
	if cfg.IndentSize == size {
		return s.formatter
	}
	cfg.IndentSize = size
	f, err := formatter.New(&cfg)
	if err != nil {
		s.log.Warningf("ignoring tabSize %d: %s", size, err)
		return s.formatter
	}
	return f
}
