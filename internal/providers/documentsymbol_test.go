package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"matlab-language-server/internal/common"
	"matlab-language-server/internal/symbols"
)

func TestDocumentSymbolsForFunctionFile(t *testing.T) {
	store := symbols.NewStore()
	store.ParseAndStore("file:///a.m", symbols.RawCodeData{
		Functions: []symbols.RawFunction{
			{Name: "foo", Range: common.SourceRange{StartLine: 1, EndLine: 3, EndChar: 3}, IsPublic: true},
		},
	})

	p := NewDocumentSymbolProvider(store)
	syms := p.Symbols("file:///a.m")
	require.Len(t, syms, 1)
	assert.Equal(t, "foo", syms[0].Name)
	assert.Equal(t, protocol.SymbolKindFunction, syms[0].Kind)
}

func TestDocumentSymbolsForClassFile(t *testing.T) {
	store := symbols.NewStore()
	store.ParseAndStore("file:///Widget.m", symbols.RawCodeData{
		ClassInfo: symbols.RawClassInfo{
			IsClassDef:   true,
			HasClassInfo: true,
			Name:         "Widget",
			Range:        common.SourceRange{StartLine: 1, EndLine: 10},
			Declaration:  common.SourceRange{StartLine: 1, EndLine: 1},
			Properties: []symbols.RawMember{
				{Name: "Value", Range: common.SourceRange{StartLine: 2, EndLine: 2}, IsPublic: true},
			},
		},
		Functions: []symbols.RawFunction{
			{Name: "getValue", ParentClass: "Widget", Range: common.SourceRange{StartLine: 5, EndLine: 7}, IsPublic: true},
		},
	})

	p := NewDocumentSymbolProvider(store)
	syms := p.Symbols("file:///Widget.m")
	require.Len(t, syms, 1)
	assert.Equal(t, "Widget", syms[0].Name)
	assert.Equal(t, protocol.SymbolKindClass, syms[0].Kind)
	require.Len(t, syms[0].Children, 2)
}

func TestDocumentSymbolsMissingFile(t *testing.T) {
	store := symbols.NewStore()
	p := NewDocumentSymbolProvider(store)
	assert.Nil(t, p.Symbols("file:///missing.m"))
}
