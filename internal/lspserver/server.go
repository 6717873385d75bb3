package lspserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"matlab-language-server/internal/common"
	"matlab-language-server/internal/config"
	"matlab-language-server/internal/documents"
	"matlab-language-server/internal/indexer"
	"matlab-language-server/internal/interpreter"
	"matlab-language-server/internal/navigation"
	"matlab-language-server/internal/pathresolve"
	"matlab-language-server/internal/providers"
	"matlab-language-server/internal/symbols"
)

var errNotInitialized = errors.New("lspserver: request arrived before initialize completed")

// Server is the editor-facing LSP surface, spec §4.8/§6.2. Every
// request/notification is handled on the single goroutine that calls
// Serve, per spec §5's cooperative event-loop model; handlers may
// suspend on network I/O (bus round trips) but never spawn a
// goroutine-per-request.
type Server struct {
	conn *Conn

	mu          sync.Mutex
	initialized bool
	shuttingDown bool
	rootURI     string
	workspaceFolders []string
	hasWorkspaceCapability bool
	connectionTiming config.ConnectionTiming

	manager    *interpreter.Manager
	store      *symbols.Store
	docs       *documents.Store
	docIndexer *indexer.DocumentIndexer
	wsIndexer  *indexer.WorkspaceIndexer
	resolver   *navigation.Resolver

	format     *providers.FormatProvider
	lint       *providers.LintProvider
	completion *providers.CompletionProvider
	sigHelp    *providers.SignatureHelpProvider
	folding    *providers.FoldingRangeProvider
	codeAction *providers.CodeActionProvider
	docSymbol  *providers.DocumentSymbolProvider

	// suppressedLines/suppressedFiles implement the two lint-filter
	// executeCommand commands: a diagnostic code suppressed on one line,
	// or every diagnostic of that code in one file, is dropped from every
	// later publishDiagnostics call for that document.
	suppressedLines map[string]map[uint32]map[string]bool
	suppressedFiles map[string]map[string]bool
}

// NewServer wires every collaborator from cfg, grounded on spec §4's
// module boundaries: the symbol index, the interpreter manager and its
// bus, the two indexers, the navigation resolver, and every feature
// provider. helperPath is forwarded to interpreter.New unchanged.
func NewServer(cfg config.Config, helperPath string) *Server {
	store := symbols.NewStore()
	docs := documents.NewStore()
	manager := interpreter.New(cfg, helperPath)
	pathResolver := pathresolve.New(manager.Bus())
	resolver := navigation.New(store, pathResolver, docs)

	s := &Server{
		manager:          manager,
		store:            store,
		docs:             docs,
		resolver:         resolver,
		connectionTiming: cfg.MatlabConnectionTiming,

		format:     providers.NewFormatProvider(manager.Bus(), manager, cfg.RequestTimeout),
		lint:       providers.NewLintProvider(manager.Bus(), manager, cfg.RequestTimeout),
		completion: providers.NewCompletionProvider(manager.Bus(), manager, cfg.RequestTimeout),
		sigHelp:    providers.NewSignatureHelpProvider(manager.Bus(), manager, cfg.RequestTimeout),
		folding:    providers.NewFoldingRangeProvider(manager.Bus(), manager, cfg.RequestTimeout),
		codeAction: providers.NewCodeActionProvider(),
		docSymbol:  providers.NewDocumentSymbolProvider(store),

		suppressedLines: make(map[string]map[uint32]map[string]bool),
		suppressedFiles: make(map[string]map[string]bool),
	}

	s.docIndexer = indexer.NewDocumentIndexer(store, manager.Bus(), manager, docs, pathResolver, cfg.DocumentIndexDebounce)
	s.wsIndexer = indexer.NewWorkspaceIndexer(store, manager.Bus(), manager, s)
	s.docIndexer.OnClassFolder(s.wsIndexer.IndexFolder)

	manager.OnStatusChange(func(state interpreter.State) {
		s.notifyConnectionStatus(state)
		if state == interpreter.Connected {
			s.reindexOpenDocuments()
		}
	})

	return s
}

// WorkspaceFolders satisfies indexer.WorkspaceFolderSource.
func (s *Server) WorkspaceFolders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.workspaceFolders))
	copy(out, s.workspaceFolders)
	return out
}

func (s *Server) notifyConnectionStatus(state interpreter.State) {
	if s.conn == nil {
		return
	}
	if err := s.conn.Notify("$/matlabConnectionStatus", map[string]string{"status": state.String()}); err != nil {
		common.LSPLogger.Warn("notify connection status: %v", err)
	}
}

// reindexOpenDocuments implements spec §8 scenario S5: on the
// "connected" lifecycle event (initial connect or reconnect) every
// open buffer is re-queued for indexing, since any index built while
// disconnected, or dropped entirely, is otherwise never refilled.
func (s *Server) reindexOpenDocuments() {
	for _, uri := range s.docs.OpenURIs() {
		s.docIndexer.QueueIndex(uri)
	}
}

// notifyFeatureUnavailable emits $/matlabFeatureUnavailable, spec §6.5,
// for a feature whose request was gated on a connection that never
// came up.
func (s *Server) notifyFeatureUnavailable(feature string) {
	if s.conn == nil {
		return
	}
	if err := s.conn.Notify("$/matlabFeatureUnavailable", map[string]string{"feature": feature}); err != nil {
		common.LSPLogger.Warn("notify feature unavailable: %v", err)
	}
}

// Serve runs the read-dispatch loop until r is closed or a fatal
// framing error occurs. Every message is handled to completion before
// the next is read, satisfying spec §5's ordering requirement.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	s.conn = NewConn(r, w)
	ctx := context.Background()

	for {
		msg, err := s.conn.ReadMessage()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		s.dispatch(ctx, msg)

		s.mu.Lock()
		done := s.shuttingDown && msg.Method == "exit"
		s.mu.Unlock()
		if done {
			return nil
		}
	}
}

func (s *Server) dispatch(ctx context.Context, msg rpcMessage) {
	isRequest := len(msg.ID) > 0

	s.mu.Lock()
	initialized := s.initialized
	shuttingDown := s.shuttingDown
	s.mu.Unlock()

	if msg.Method != "initialize" && msg.Method != "initialized" && msg.Method != "exit" {
		if !initialized {
			if isRequest {
				_ = s.conn.Reply(msg.ID, nil, errNotInitialized)
			}
			return
		}
		if shuttingDown && msg.Method != "shutdown" {
			if isRequest {
				_ = s.conn.Reply(msg.ID, nil, errNotInitialized)
			}
			return
		}
	}

	result, err := s.handle(ctx, msg.Method, msg.Params)
	if isRequest {
		if repErr := s.conn.Reply(msg.ID, result, err); repErr != nil {
			common.LSPLogger.Error("lspserver: reply failed for %s: %v", msg.Method, repErr)
		}
	} else if err != nil {
		common.LSPLogger.Warn("lspserver: notification %s failed: %v", msg.Method, err)
	}
}

func (s *Server) handle(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	switch method {
	case "initialize":
		return s.handleInitialize(ctx, params)
	case "initialized":
		return nil, s.handleInitialized(ctx, params)
	case "shutdown":
		return nil, s.handleShutdown()
	case "exit":
		return nil, s.handleExit()

	case "textDocument/didOpen":
		return nil, s.handleDidOpen(ctx, params)
	case "textDocument/didChange":
		return nil, s.handleDidChange(ctx, params)
	case "textDocument/didClose":
		return nil, s.handleDidClose(params)
	case "textDocument/didSave":
		return nil, s.handleDidSave(ctx, params)

	case "textDocument/definition":
		return s.handleDefinition(ctx, params)
	case "textDocument/references":
		return s.handleReferences(ctx, params)
	case "textDocument/documentSymbol":
		return s.handleDocumentSymbol(params)

	case "textDocument/formatting":
		return s.handleFormatting(ctx, params)
	case "textDocument/completion":
		return s.handleCompletion(ctx, params)
	case "textDocument/signatureHelp":
		return s.handleSignatureHelp(ctx, params)
	case "textDocument/foldingRange":
		return s.handleFoldingRange(ctx, params)
	case "textDocument/codeAction":
		return s.handleCodeAction(ctx, params)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(ctx, params)

	default:
		return nil, nil
	}
}

func unmarshalParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
