package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureHelpConvertsReply(t *testing.T) {
	b, server := newAttachedBus(t)
	p := NewSignatureHelpProvider(b, alwaysConnected{}, 0)

	go func() {
		channel, _ := readRequestChannel(t, server)
		assert.Equal(t, signatureHelpRequestChannel, channel)
		writeReply(t, server, signatureHelpResponseChannel, map[string]interface{}{
			"signatures": []map[string]interface{}{
				{
					"label":         "plot(x, y)",
					"documentation": "Plot 2-D data",
					"parameters": []map[string]string{
						{"label": "x", "documentation": "x data"},
						{"label": "y", "documentation": "y data"},
					},
				},
			},
			"activeSignature": 0,
			"activeParameter": 1,
		})
	}()

	help, err := p.Help(testCtx(t), "plot(a, ", 1, 8)
	require.NoError(t, err)
	require.NotNil(t, help)
	require.Len(t, help.Signatures, 1)
	assert.Equal(t, "plot(x, y)", help.Signatures[0].Label)
	assert.Equal(t, uint32(1), help.ActiveParameter)
}

func TestSignatureHelpNoSignaturesReturnsNil(t *testing.T) {
	b, server := newAttachedBus(t)
	p := NewSignatureHelpProvider(b, alwaysConnected{}, 0)

	go func() {
		_, _ = readRequestChannel(t, server)
		writeReply(t, server, signatureHelpResponseChannel, map[string]interface{}{"signatures": []interface{}{}})
	}()

	help, err := p.Help(testCtx(t), "x = 1;", 1, 1)
	require.NoError(t, err)
	assert.Nil(t, help)
}
