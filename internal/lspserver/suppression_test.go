package lspserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

func diagAt(line uint32, code string) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{Start: protocol.Position{Line: line}},
		Code:  code,
	}
}

func TestExecFilterByLineSuppressesOnlyThatLineAndCode(t *testing.T) {
	s := NewServer(testConfig(), "")
	uri := "file:///a.m"

	require.NoError(t, s.execFilterByLine([]interface{}{uri, float64(2), "MLINT001"}))

	diags := []protocol.Diagnostic{
		diagAt(2, "MLINT001"),
		diagAt(2, "MLINT002"),
		diagAt(3, "MLINT001"),
	}
	out := s.filterDiagnostics(uri, diags)
	assert.Len(t, out, 2)
	for _, d := range out {
		assert.False(t, d.Range.Start.Line == 2 && d.Code == "MLINT001")
	}
}

func TestExecFilterByFileSuppressesEveryLine(t *testing.T) {
	s := NewServer(testConfig(), "")
	uri := "file:///a.m"

	require.NoError(t, s.execFilterByFile([]interface{}{uri, "MLINT001"}))

	diags := []protocol.Diagnostic{
		diagAt(1, "MLINT001"),
		diagAt(99, "MLINT001"),
		diagAt(1, "MLINT002"),
	}
	out := s.filterDiagnostics(uri, diags)
	require.Len(t, out, 1)
	assert.Equal(t, "MLINT002", out[0].Code)
}

func TestFilterDiagnosticsUnaffectedURIPassesThrough(t *testing.T) {
	s := NewServer(testConfig(), "")
	require.NoError(t, s.execFilterByFile([]interface{}{"file:///other.m", "MLINT001"}))

	diags := []protocol.Diagnostic{diagAt(1, "MLINT001")}
	out := s.filterDiagnostics("file:///a.m", diags)
	assert.Equal(t, diags, out)
}

func TestExecFilterByLineRejectsTooFewArguments(t *testing.T) {
	s := NewServer(testConfig(), "")
	err := s.execFilterByLine([]interface{}{"file:///a.m"})
	assert.Error(t, err)
}
