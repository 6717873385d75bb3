package providers

import (
	"go.lsp.dev/protocol"

	"matlab-language-server/internal/symbols"
)

// DocumentSymbolProvider answers textDocument/documentSymbol entirely
// from the already-populated symbol index, spec §4.8
// ("derived from the symbol index").
type DocumentSymbolProvider struct {
	store *symbols.Store
}

func NewDocumentSymbolProvider(store *symbols.Store) *DocumentSymbolProvider {
	return &DocumentSymbolProvider{store: store}
}

func (p *DocumentSymbolProvider) Symbols(uri string) []protocol.DocumentSymbol {
	data, ok := p.store.Get(uri)
	if !ok {
		return nil
	}

	var out []protocol.DocumentSymbol
	if data.IsClassDef && data.ClassInfo != nil {
		out = append(out, classSymbol(data.ClassInfo))
		return out
	}

	data.Functions.Each(func(name string, fn *symbols.FunctionInfo) {
		out = append(out, protocol.DocumentSymbol{
			Name:           name,
			Kind:           protocol.SymbolKindFunction,
			Range:          fn.Range.ToLSPRange(),
			SelectionRange: fn.DeclarationRange().ToLSPRange(),
		})
	})
	return out
}

func classSymbol(c *symbols.ClassInfo) protocol.DocumentSymbol {
	sym := protocol.DocumentSymbol{
		Name:           c.Name,
		Kind:           protocol.SymbolKindClass,
		Range:          c.Range.ToLSPRange(),
		SelectionRange: c.DeclarationRange.ToLSPRange(),
	}

	c.Properties.Each(func(name string, m *symbols.MemberInfo) {
		sym.Children = append(sym.Children, protocol.DocumentSymbol{
			Name:           name,
			Kind:           protocol.SymbolKindProperty,
			Range:          m.Range.ToLSPRange(),
			SelectionRange: m.Range.ToLSPRange(),
		})
	})
	c.Enumerations.Each(func(name string, m *symbols.MemberInfo) {
		sym.Children = append(sym.Children, protocol.DocumentSymbol{
			Name:           name,
			Kind:           protocol.SymbolKindEnumMember,
			Range:          m.Range.ToLSPRange(),
			SelectionRange: m.Range.ToLSPRange(),
		})
	})
	c.Methods.Each(func(name string, fn *symbols.FunctionInfo) {
		sym.Children = append(sym.Children, protocol.DocumentSymbol{
			Name:           name,
			Kind:           protocol.SymbolKindMethod,
			Range:          fn.Range.ToLSPRange(),
			SelectionRange: fn.DeclarationRange().ToLSPRange(),
		})
	})
	return sym
}
