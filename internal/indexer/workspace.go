package indexer

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"matlab-language-server/internal/bus"
	"matlab-language-server/internal/common"
	"matlab-language-server/internal/symbols"
)

// nextRequestID allocates the monotonically increasing integer spec §3
// defines for RequestId; it is distinct from the uuid channel-id
// bus.Stream uses to correlate this request's streamed replies.
var nextRequestID atomic.Int64

const (
	workspaceRequestChannel  = "/indexWorkspace/request"
	workspaceResponseChannel = "/indexWorkspace/response"
)

// WorkspaceFolderSource supplies the client's current workspace folder
// list, spec §4.5 ("fetches the client's workspace folder list").
type WorkspaceFolderSource interface {
	WorkspaceFolders() []string
}

// WorkspaceIndexer bulk-indexes source files across one or more
// folders, spec §4.5.
type WorkspaceIndexer struct {
	store   *symbols.Store
	bus     *bus.Bus
	conn    ConnectionState
	folders WorkspaceFolderSource

	enabled bool
}

func NewWorkspaceIndexer(store *symbols.Store, b *bus.Bus, conn ConnectionState, folders WorkspaceFolderSource) *WorkspaceIndexer {
	return &WorkspaceIndexer{store: store, bus: b, conn: conn, folders: folders}
}

// Setup enables the component only if the client advertises workspace
// support, spec §4.5.
func (w *WorkspaceIndexer) Setup(hasWorkspaceCapability bool) {
	w.enabled = hasWorkspaceCapability
}

// IndexWorkspace is a no-op if disabled or the interpreter is
// disconnected; otherwise it indexes every current workspace folder.
func (w *WorkspaceIndexer) IndexWorkspace(ctx context.Context) {
	if !w.enabled || !w.conn.Connected() {
		return
	}
	folders := w.folders.WorkspaceFolders()
	if len(folders) == 0 {
		return
	}
	w.IndexFolders(ctx, folders)
}

type workspaceIndexMessage struct {
	FilePath string              `json:"filePath"`
	CodeData symbols.RawCodeData `json:"codeData"`
	IsDone   bool                `json:"isDone"`
}

// IndexFolders streams-indexes the given folders, spec §4.5: allocate a
// request id, subscribe to the correlated response channel, publish the
// request, and parseAndStore every incoming {filePath, codeData, isDone}
// message until isDone, at which point the subscription is released.
func (w *WorkspaceIndexer) IndexFolders(ctx context.Context, folders []string) {
	err := w.bus.Stream(ctx, workspaceRequestChannel, workspaceResponseChannel,
		func(id string) interface{} {
			// id is the bus's own uuid channel-correlation id (it is what
			// the response channel subscription below is keyed on);
			// requestId is the separate monotonically allocated integer
			// spec §3 documents for this field.
			return map[string]interface{}{"folders": folders, "id": id, "requestId": nextRequestID.Add(1)}
		},
		func(payload json.RawMessage) bool {
			var msg workspaceIndexMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				common.IndexLogger.Warn("workspace index: %v: %v", common.ErrMalformedReply, err)
				return false
			}
			if msg.FilePath != "" {
				w.store.ParseAndStore(msg.FilePath, msg.CodeData)
			}
			return msg.IsDone
		},
	)
	if err != nil {
		common.IndexLogger.Warn("indexFolders(%v) failed: %v", folders, err)
	}
}

// IndexFolder is a convenience wrapper for the class-closure expansion
// trigger, spec §4.4.1, which indexes exactly one folder.
func (w *WorkspaceIndexer) IndexFolder(folder string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	w.IndexFolders(ctx, []string{folder})
}
