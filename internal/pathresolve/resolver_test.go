package pathresolve

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matlab-language-server/internal/bus"
)

func newAttachedBus(t *testing.T) (*bus.Bus, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { _ = client.Close(); _ = server.Close() })
	b := bus.New()
	b.Attach(client)
	return b, server
}

func readFramePayload(t *testing.T, r *bufio.Reader) json.RawMessage {
	t.Helper()
	contentLength := -1
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "Content-Length:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:")))
			require.NoError(t, err)
			contentLength = n
		}
	}
	require.GreaterOrEqual(t, contentLength, 0)

	body := make([]byte, contentLength)
	_, err := r.Read(body)
	require.NoError(t, err)

	var msg struct {
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(body, &msg))
	return msg.Payload
}

func writeFramePayload(t *testing.T, conn net.Conn, channel, payload string) {
	t.Helper()
	body := fmt.Sprintf(`{"channel":%q,"payload":%s}`, channel, payload)
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	_, err := conn.Write([]byte(header + body))
	require.NoError(t, err)
}

func TestResolvePathsSendsIdentifiersAndContext(t *testing.T) {
	b, server := newAttachedBus(t)
	r := New(b)

	go func() {
		reader := bufio.NewReader(server)
		payload := readFramePayload(t, reader)
		var body map[string]interface{}
		_ = json.Unmarshal(payload, &body)
		require.Equal(t, "file:///a/c.m", body["containingFile"])

		reply := `[{"identifier":"foo","uri":"file:///a/b.m","fileInfo":{"fileName":"b.m","line":1,"char":1,"codeData":{}}}]`
		writeFramePayload(t, server, "/app/findIdentifierDefinition/response", reply)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	results, err := r.ResolvePaths(ctx, []string{"foo"}, "file:///a/c.m")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "foo", results[0].Identifier)
	assert.Equal(t, "file:///a/b.m", results[0].URI)
}

func TestResultNotFoundOnLowLineWithSymbolSearch(t *testing.T) {
	r := Result{URI: "file:///x.m", FileInfo: &FileInfo{Line: 1, RequiresSymbolSearch: true}}
	assert.True(t, r.NotFound())

	r2 := Result{URI: "file:///x.m", FileInfo: &FileInfo{Line: 5, RequiresSymbolSearch: true}}
	assert.False(t, r2.NotFound())

	r3 := Result{URI: ""}
	assert.True(t, r3.NotFound())
}

func TestResultNotFoundIgnoresLowLineWithoutSymbolSearch(t *testing.T) {
	// A direct (non-recursive) resolution leaves line unset; it must
	// never be treated as not-found just because line <= 1.
	r := Result{URI: "file:///x.m", FileInfo: &FileInfo{Line: 0}}
	assert.False(t, r.NotFound())
}
