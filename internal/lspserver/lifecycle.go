package lspserver

import (
	"context"
	"encoding/json"

	"go.lsp.dev/protocol"

	"matlab-language-server/internal/config"
	"matlab-language-server/internal/providers"
)

func (s *Server) handleInitialize(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var params protocol.InitializeParams
	if err := unmarshalParams(raw, &params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if params.RootURI != "" {
		s.rootURI = string(params.RootURI)
	}
	for _, f := range params.WorkspaceFolders {
		s.workspaceFolders = append(s.workspaceFolders, string(f.URI))
	}
	s.hasWorkspaceCapability = params.Capabilities.Workspace != nil && params.Capabilities.Workspace.WorkspaceFolders
	s.mu.Unlock()

	s.wsIndexer.Setup(s.hasWorkspaceCapability)

	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save:      &protocol.SaveOptions{IncludeText: false},
			},
			DocumentFormattingProvider: true,
			DefinitionProvider:         true,
			ReferencesProvider:         true,
			DocumentSymbolProvider:     true,
			CodeActionProvider:         true,
			FoldingRangeProvider:       true,
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{".", "(", ",", "/", "\\", " "},
			},
			SignatureHelpProvider: &protocol.SignatureHelpOptions{
				TriggerCharacters: []string{"(", ","},
			},
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{
					providers.CommandFilterLintByLine,
					providers.CommandFilterLintByFile,
				},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "matlab-language-server",
			Version: "0.1.0",
		},
	}, nil
}

func (s *Server) handleInitialized(ctx context.Context, raw json.RawMessage) error {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	if s.connectionTiming == config.TimingOnStart {
		go func() {
			if s.manager.EnsureConnection(context.Background()) {
				s.wsIndexer.IndexWorkspace(context.Background())
			}
		}()
	}
	return nil
}

func (s *Server) handleShutdown() error {
	s.mu.Lock()
	s.shuttingDown = true
	s.mu.Unlock()
	return s.manager.Shutdown()
}

func (s *Server) handleExit() error {
	return nil
}
