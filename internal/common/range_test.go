package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"
)

func TestSourceRangeToLSPRange(t *testing.T) {
	r := SourceRange{StartLine: 1, StartChar: 4, EndLine: 3, EndChar: 9}
	lsp := r.ToLSPRange()

	assert.Equal(t, uint32(0), lsp.Start.Line)
	assert.Equal(t, uint32(4), lsp.Start.Character)
	assert.Equal(t, uint32(2), lsp.End.Line)
	assert.Equal(t, uint32(9), lsp.End.Character)
}

func TestSourceRangeIsZero(t *testing.T) {
	assert.True(t, SourceRange{}.IsZero())
	assert.False(t, SourceRange{StartLine: 1}.IsZero())
}

func TestFromLSPPosition(t *testing.T) {
	line, char := FromLSPPosition(protocol.Position{Line: 0, Character: 7})
	assert.Equal(t, 1, line)
	assert.Equal(t, 7, char)
}
