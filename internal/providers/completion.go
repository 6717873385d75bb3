package providers

import (
	"context"
	"encoding/json"
	"time"

	"go.lsp.dev/protocol"

	"matlab-language-server/internal/bus"
	"matlab-language-server/internal/common"
)

const (
	completionRequestChannel  = "/completions/request"
	completionResponseChannel = "/completions/response"
)

// rawCompletion is one suggestion from the interpreter's completion
// engine, spec §6.1.
type rawCompletion struct {
	Label      string `json:"label"`
	Kind       string `json:"kind"`
	Detail     string `json:"detail"`
	InsertText string `json:"insertText"`
}

// CompletionProvider implements textDocument/completion, spec §4.8.
// Trigger characters are declared by the server capabilities in
// lspserver, not here.
type CompletionProvider struct{ base }

func NewCompletionProvider(b *bus.Bus, conn ConnectionEnsurer, timeout time.Duration) *CompletionProvider {
	return &CompletionProvider{newBase(b, conn, timeout)}
}

func (p *CompletionProvider) Complete(ctx context.Context, code, fileName string, line, char int) ([]protocol.CompletionItem, error) {
	reqCtx, cancel, err := p.ensure(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	raw, err := p.bus.Call(reqCtx, completionRequestChannel, completionResponseChannel, map[string]interface{}{
		"code":     code,
		"fileName": fileName,
		"cursorPosition": map[string]int{
			"line": line,
			"char": char,
		},
	})
	if err != nil {
		return nil, err
	}

	var items []rawCompletion
	if err := json.Unmarshal(raw, &items); err != nil {
		common.LSPLogger.Warn("completions: %v: %v", common.ErrMalformedReply, err)
		return nil, common.ErrMalformedReply
	}

	out := make([]protocol.CompletionItem, 0, len(items))
	for _, it := range items {
		out = append(out, protocol.CompletionItem{
			Label:      it.Label,
			Kind:       completionKind(it.Kind),
			Detail:     it.Detail,
			InsertText: it.InsertText,
		})
	}
	return out, nil
}

func completionKind(k string) protocol.CompletionItemKind {
	switch k {
	case "function":
		return protocol.CompletionItemKindFunction
	case "variable":
		return protocol.CompletionItemKindVariable
	case "class":
		return protocol.CompletionItemKindClass
	case "property":
		return protocol.CompletionItemKindProperty
	case "keyword":
		return protocol.CompletionItemKindKeyword
	case "file":
		return protocol.CompletionItemKindFile
	case "folder":
		return protocol.CompletionItemKindFolder
	default:
		return protocol.CompletionItemKindText
	}
}
