package lspserver

import (
	"context"
	"encoding/json"

	"go.lsp.dev/protocol"

	"matlab-language-server/internal/common"
	"matlab-language-server/internal/symbols"
)

func (s *Server) handleDefinition(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var p protocol.DefinitionParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}

	uri := string(p.TextDocument.URI)
	pos := common.FromLSP(p.Position)
	locs := s.resolver.FindDefinition(ctx, uri, pos)
	return toLSPLocations(locs), nil
}

func (s *Server) handleReferences(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var p protocol.ReferenceParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}

	uri := string(p.TextDocument.URI)
	pos := common.FromLSP(p.Position)
	locs := s.resolver.FindReferences(uri, pos)
	return toLSPLocations(locs), nil
}

func (s *Server) handleDocumentSymbol(raw json.RawMessage) (interface{}, error) {
	var p protocol.DocumentSymbolParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	return s.docSymbol.Symbols(string(p.TextDocument.URI)), nil
}

func toLSPLocations(locs []symbols.Location) []protocol.Location {
	out := make([]protocol.Location, 0, len(locs))
	for _, loc := range locs {
		out = append(out, protocol.Location{
			URI:   protocol.DocumentURI(loc.URI),
			Range: loc.Range.ToLSPRange(),
		})
	}
	return out
}
