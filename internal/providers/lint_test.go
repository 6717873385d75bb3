package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLintConvertsRecordsToDiagnostics(t *testing.T) {
	b, server := newAttachedBus(t)
	p := NewLintProvider(b, alwaysConnected{}, 0)

	go func() {
		channel, _ := readRequestChannel(t, server)
		assert.Equal(t, lintRequestChannel, channel)
		writeReply(t, server, lintResponseChannel, []map[string]interface{}{
			{
				"range":    map[string]int{"lineStart": 1, "charStart": 0, "lineEnd": 1, "charEnd": 3},
				"message":  "unused variable",
				"severity": "warning",
				"id":       "MLINT001",
			},
		})
	}()

	diags, err := p.Lint(testCtx(t), "x = 1;", "a.m")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "unused variable", diags[0].Message)
	assert.Equal(t, "MLINT001", diags[0].Code)
}

func TestResolveEndStatement(t *testing.T) {
	b, server := newAttachedBus(t)
	p := NewLintProvider(b, alwaysConnected{}, 0)

	go func() {
		channel, _ := readRequestChannel(t, server)
		assert.Equal(t, endStatementRequestChannel, channel)
		writeReply(t, server, endStatementResponseChannel, map[string]int{"lineNumber": 8})
	}()

	line, err := p.ResolveEndStatement(testCtx(t), "function f()\n", 1)
	require.NoError(t, err)
	assert.Equal(t, 8, line)
}
