package lspserver

import (
	"bytes"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnReadMessageParsesFrame(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`
	input := bytes.NewBufferString("Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body)

	conn := NewConn(input, &bytes.Buffer{})
	msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "initialize", msg.Method)
	assert.Equal(t, json.RawMessage("1"), msg.ID)
}

func TestConnReplyWritesFramedResult(t *testing.T) {
	var out bytes.Buffer
	conn := NewConn(&bytes.Buffer{}, &out)

	err := conn.Reply(json.RawMessage("1"), map[string]string{"ok": "yes"}, nil)
	require.NoError(t, err)

	msg := readFramedMessage(t, &out)
	assert.Equal(t, json.RawMessage("1"), msg.ID)
	assert.Nil(t, msg.Error)
}

func TestConnReplyWritesFramedError(t *testing.T) {
	var out bytes.Buffer
	conn := NewConn(&bytes.Buffer{}, &out)

	err := conn.Reply(json.RawMessage("2"), nil, assertErr("boom"))
	require.NoError(t, err)

	msg := readFramedMessage(t, &out)
	require.NotNil(t, msg.Error)
	assert.Equal(t, "boom", msg.Error.Message)
}

func TestConnNotifySendsNoID(t *testing.T) {
	var out bytes.Buffer
	conn := NewConn(&bytes.Buffer{}, &out)

	err := conn.Notify("$/matlabConnectionStatus", map[string]string{"status": "connected"})
	require.NoError(t, err)

	msg := readFramedMessage(t, &out)
	assert.Equal(t, "$/matlabConnectionStatus", msg.Method)
	assert.Empty(t, msg.ID)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func readFramedMessage(t *testing.T, buf *bytes.Buffer) rpcMessage {
	t.Helper()
	conn := NewConn(buf, &bytes.Buffer{})
	msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return msg
}
