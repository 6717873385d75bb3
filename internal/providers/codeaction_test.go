package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

func TestCodeActionsWrapBothLintFilterCommands(t *testing.T) {
	p := NewCodeActionProvider()
	diags := []protocol.Diagnostic{
		{Message: "unused variable", Code: "MLINT001"},
	}

	actions := p.Actions("file:///a.m", diags)
	require.Len(t, actions, 2)
	assert.Equal(t, CommandFilterLintByLine, actions[0].Command.Command)
	assert.Equal(t, CommandFilterLintByFile, actions[1].Command.Command)
}

func TestCodeActionsEmptyForNoDiagnostics(t *testing.T) {
	p := NewCodeActionProvider()
	assert.Empty(t, p.Actions("file:///a.m", nil))
}
