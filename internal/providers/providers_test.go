package providers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"matlab-language-server/internal/bus"
)

// alwaysConnected satisfies ConnectionEnsurer for tests that don't
// exercise the "interpreter unavailable" path.
type alwaysConnected struct{}

func (alwaysConnected) EnsureConnection(ctx context.Context) bool { return true }

// neverConnected satisfies ConnectionEnsurer for tests of the
// unavailable path.
type neverConnected struct{}

func (neverConnected) EnsureConnection(ctx context.Context) bool { return false }

func pipeConn(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

func newAttachedBus(t *testing.T) (*bus.Bus, net.Conn) {
	t.Helper()
	client, server := pipeConn(t)
	b := bus.New()
	b.Attach(client)
	return b, server
}

// readRequestChannel reads one frame off server and returns the
// namespaced channel with the /app prefix stripped.
func readRequestChannel(t *testing.T, server net.Conn) (string, json.RawMessage) {
	t.Helper()
	r := bufio.NewReaderSize(server, 1<<20)
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
	_, err := io.ReadFull(r, body)
	require.NoError(t, err)

	var msg bus.Message
	require.NoError(t, json.Unmarshal(body, &msg))
	require.True(t, strings.HasPrefix(msg.Channel, bus.Namespace))
	return strings.TrimPrefix(msg.Channel, bus.Namespace), msg.Payload
}

func writeReply(t *testing.T, server net.Conn, channel string, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	msg := bus.Message{Channel: bus.Namespace + channel, Payload: raw}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	_, err = fmt.Fprintf(server, "Content-Length: %d\r\n\r\n", len(data))
	require.NoError(t, err)
	_, err = server.Write(data)
	require.NoError(t, err)
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}
