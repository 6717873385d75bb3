package lspserver

import (
	"context"
	"encoding/json"
	"fmt"

	"go.lsp.dev/protocol"

	"matlab-language-server/internal/common"
	"matlab-language-server/internal/providers"
)

func (s *Server) handleFormatting(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var p protocol.DocumentFormattingParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}

	uri := string(p.TextDocument.URI)
	text, ok := s.docs.Text(uri)
	if !ok {
		return nil, nil
	}

	formatted, err := s.format.Format(ctx, text, p.Options.InsertSpaces, int(p.Options.TabSize))
	if err != nil {
		if err == common.ErrInterpreterUnavailable {
			s.notifyFeatureUnavailable("formatting")
			return nil, nil
		}
		return nil, err
	}
	if formatted == text {
		return []protocol.TextEdit{}, nil
	}

	return []protocol.TextEdit{wholeDocumentEdit(text, formatted)}, nil
}

// wholeDocumentEdit replaces original's full extent with replacement,
// since the interpreter's formatter returns the reformatted document
// rather than a diff.
func wholeDocumentEdit(original, replacement string) protocol.TextEdit {
	endLine, endChar := endOfText(original)
	return protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: endLine, Character: endChar},
		},
		NewText: replacement,
	}
}

func endOfText(text string) (line, char uint32) {
	var lastLineStart int
	for i, r := range text {
		if r == '\n' {
			line++
			lastLineStart = i + 1
		}
	}
	return line, uint32(len(text) - lastLineStart)
}

func (s *Server) handleCompletion(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var p protocol.CompletionParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}

	uri := string(p.TextDocument.URI)
	text, ok := s.docs.Text(uri)
	if !ok {
		return nil, nil
	}

	pos := common.FromLSP(p.Position)
	items, err := s.completion.Complete(ctx, text, uri, pos.Line, pos.Char)
	if err != nil {
		if err == common.ErrInterpreterUnavailable {
			s.notifyFeatureUnavailable("completion")
			return nil, nil
		}
		return nil, err
	}
	return protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}

func (s *Server) handleSignatureHelp(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var p protocol.SignatureHelpParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}

	uri := string(p.TextDocument.URI)
	text, ok := s.docs.Text(uri)
	if !ok {
		return nil, nil
	}

	pos := common.FromLSP(p.Position)
	help, err := s.sigHelp.Help(ctx, text, pos.Line, pos.Char)
	if err != nil {
		if err == common.ErrInterpreterUnavailable {
			s.notifyFeatureUnavailable("signatureHelp")
			return nil, nil
		}
		return nil, err
	}
	return help, nil
}

func (s *Server) handleFoldingRange(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var p protocol.FoldingRangeParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}

	uri := string(p.TextDocument.URI)
	text, ok := s.docs.Text(uri)
	if !ok {
		return nil, nil
	}

	ranges, err := s.folding.FoldingRanges(ctx, text)
	if err != nil {
		if err == common.ErrInterpreterUnavailable {
			s.notifyFeatureUnavailable("foldingRange")
			return nil, nil
		}
		return nil, err
	}
	return ranges, nil
}

func (s *Server) handleCodeAction(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var p protocol.CodeActionParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	return s.codeAction.Actions(p.TextDocument.URI, p.Context.Diagnostics), nil
}

func (s *Server) handleExecuteCommand(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var p protocol.ExecuteCommandParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}

	switch p.Command {
	case providers.CommandFilterLintByLine:
		return nil, s.execFilterByLine(p.Arguments)
	case providers.CommandFilterLintByFile:
		return nil, s.execFilterByFile(p.Arguments)
	default:
		return nil, fmt.Errorf("lspserver: unknown command %q", p.Command)
	}
}
