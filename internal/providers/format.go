package providers

import (
	"context"
	"encoding/json"
	"time"

	"matlab-language-server/internal/bus"
	"matlab-language-server/internal/common"
)

const (
	formatRequestChannel  = "/formatDocument/request"
	formatResponseChannel = "/formatDocument/response"
)

// FormatProvider implements textDocument/formatting, spec §4.8/§6.1.
type FormatProvider struct{ base }

func NewFormatProvider(b *bus.Bus, conn ConnectionEnsurer, timeout time.Duration) *FormatProvider {
	return &FormatProvider{newBase(b, conn, timeout)}
}

// Format asks the interpreter to reformat text and returns the
// reformatted document.
func (p *FormatProvider) Format(ctx context.Context, text string, insertSpaces bool, tabSize int) (string, error) {
	reqCtx, cancel, err := p.ensure(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	raw, err := p.bus.Call(reqCtx, formatRequestChannel, formatResponseChannel, map[string]interface{}{
		"data":         text,
		"insertSpaces": insertSpaces,
		"tabSize":      tabSize,
		"indentSize":   tabSize,
	})
	if err != nil {
		return "", err
	}

	var reply struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		common.LSPLogger.Warn("formatDocument: %v: %v", common.ErrMalformedReply, err)
		return "", common.ErrMalformedReply
	}
	return reply.Data, nil
}
