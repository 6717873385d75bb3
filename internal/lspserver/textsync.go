package lspserver

import (
	"context"
	"encoding/json"

	"go.lsp.dev/protocol"

	"matlab-language-server/internal/common"
)

func (s *Server) handleDidOpen(ctx context.Context, raw json.RawMessage) error {
	var p protocol.DidOpenTextDocumentParams
	if err := unmarshalParams(raw, &p); err != nil {
		return err
	}

	uri := string(p.TextDocument.URI)
	s.docs.Open(uri, p.TextDocument.Text, p.TextDocument.Version)
	s.docIndexer.QueueIndex(uri)
	s.publishDiagnostics(ctx, uri, p.TextDocument.Text)
	return nil
}

func (s *Server) handleDidChange(ctx context.Context, raw json.RawMessage) error {
	var p protocol.DidChangeTextDocumentParams
	if err := unmarshalParams(raw, &p); err != nil {
		return err
	}
	if len(p.ContentChanges) == 0 {
		return nil
	}

	uri := string(p.TextDocument.URI)
	text := p.ContentChanges[len(p.ContentChanges)-1].Text
	s.docs.Update(uri, text, p.TextDocument.Version)
	s.docIndexer.QueueIndex(uri)
	return nil
}

func (s *Server) handleDidClose(raw json.RawMessage) error {
	var p protocol.DidCloseTextDocumentParams
	if err := unmarshalParams(raw, &p); err != nil {
		return err
	}

	uri := string(p.TextDocument.URI)
	s.docIndexer.CancelPending(uri)
	s.docs.Close(uri)
	s.store.Clear(uri)

	if s.conn != nil {
		_ = s.conn.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
			URI:         protocol.DocumentURI(uri),
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

func (s *Server) handleDidSave(ctx context.Context, raw json.RawMessage) error {
	var p protocol.DidSaveTextDocumentParams
	if err := unmarshalParams(raw, &p); err != nil {
		return err
	}

	uri := string(p.TextDocument.URI)
	text := p.Text
	if text == "" {
		if t, ok := s.docs.Text(uri); ok {
			text = t
		}
	}
	if text == "" {
		return nil
	}

	s.docIndexer.QueueIndex(uri)
	s.publishDiagnostics(ctx, uri, text)
	return nil
}

// publishDiagnostics lints text and sends the result, spec §4.8. A
// disconnected interpreter degrades to an empty diagnostics set plus a
// $/matlabFeatureUnavailable notice rather than an error surfaced to
// the editor.
func (s *Server) publishDiagnostics(ctx context.Context, uri, text string) {
	diags, err := s.lint.Lint(ctx, text, uri)
	if err != nil {
		if err == common.ErrInterpreterUnavailable {
			s.notifyFeatureUnavailable("linting")
		} else {
			common.LSPLogger.Warn("lint(%s): %v", uri, err)
		}
		return
	}
	if s.conn == nil {
		return
	}
	if err := s.conn.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(uri),
		Diagnostics: s.filterDiagnostics(uri, diags),
	}); err != nil {
		common.LSPLogger.Warn("publishDiagnostics(%s): %v", uri, err)
	}
}
