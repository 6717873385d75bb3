// Package lspserver implements the editor-facing LSP surface, spec
// §6.2: a Content-Length-framed JSON-RPC connection over stdio,
// dispatched to feature providers and the symbol index.
package lspserver

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"matlab-language-server/internal/common"
)

// rpcMessage is the wire shape of one LSP frame, covering requests,
// responses, and notifications in the single struct the teacher's own
// protocol/jsonrpc.go uses.
type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInternalError  = -32603
)

// Conn is a Content-Length-framed JSON-RPC 2.0 connection. Reads and
// writes are safe from separate goroutines; writes are serialized.
type Conn struct {
	r      *bufio.Reader
	w      io.Writer
	writeMu sync.Mutex
}

func NewConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{r: bufio.NewReaderSize(r, 1<<20), w: w}
}

// ReadMessage blocks for the next frame on the connection.
func (c *Conn) ReadMessage() (rpcMessage, error) {
	var contentLength int
	for {
		line, err := c.r.ReadString('\n')
		if err != nil {
			return rpcMessage{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "Content-Length:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:")))
			if err != nil {
				return rpcMessage{}, fmt.Errorf("lspserver: bad Content-Length: %w", err)
			}
			contentLength = n
		}
		// Other headers (Content-Type) are accepted but not consumed.
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return rpcMessage{}, err
	}

	var msg rpcMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return rpcMessage{}, fmt.Errorf("lspserver: %w", err)
	}
	return msg, nil
}

func (c *Conn) writeMessage(msg rpcMessage) error {
	msg.JSONRPC = "2.0"
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := fmt.Fprintf(c.w, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	_, err = c.w.Write(data)
	return err
}

// Reply sends a response frame for request id, carrying result or err
// (never both).
func (c *Conn) Reply(id json.RawMessage, result interface{}, err error) error {
	msg := rpcMessage{ID: id}
	if err != nil {
		msg.Error = toRPCError(err)
	} else {
		msg.Result = result
	}
	if werr := c.writeMessage(msg); werr != nil {
		common.LSPLogger.Error("lspserver: write reply failed: %v", werr)
		return werr
	}
	return nil
}

// Notify sends a server-to-client notification, no ID, no reply
// expected — used for $/matlabConnectionStatus,
// $/matlabFeatureUnavailable, and textDocument/publishDiagnostics.
func (c *Conn) Notify(method string, params interface{}) error {
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return c.writeMessage(rpcMessage{Method: method, Params: data})
}

func toRPCError(err error) *rpcError {
	return &rpcError{Code: codeInternalError, Message: err.Error()}
}
