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
	foldRequestChannel  = "/foldDocument/request"
	foldResponseChannel = "/foldDocument/response"
)

// FoldingRangeProvider implements textDocument/foldingRange, spec
// §4.8. The interpreter correlates replies by id, spec §6.1's
// "/foldDocument/response/<id>" pattern.
type FoldingRangeProvider struct{ base }

func NewFoldingRangeProvider(b *bus.Bus, conn ConnectionEnsurer, timeout time.Duration) *FoldingRangeProvider {
	return &FoldingRangeProvider{newBase(b, conn, timeout)}
}

func (p *FoldingRangeProvider) FoldingRanges(ctx context.Context, code string) ([]protocol.FoldingRange, error) {
	reqCtx, cancel, err := p.ensure(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	raw, err := p.bus.CallWithID(reqCtx, foldRequestChannel, foldResponseChannel, func(id string) interface{} {
		return map[string]interface{}{"id": id, "code": code}
	})
	if err != nil {
		return nil, err
	}

	// spec §6.1: the reply is a flat integer line-pair stream
	// [startLine, endLine, ...], not a list of objects.
	var lines []uint32
	if err := json.Unmarshal(raw, &lines); err != nil {
		common.LSPLogger.Warn("foldDocument: %v: %v", common.ErrMalformedReply, err)
		return nil, common.ErrMalformedReply
	}
	if len(lines)%2 != 0 {
		common.LSPLogger.Warn("foldDocument: %v: odd-length line-pair stream", common.ErrMalformedReply)
		return nil, common.ErrMalformedReply
	}

	out := make([]protocol.FoldingRange, 0, len(lines)/2)
	for i := 0; i < len(lines); i += 2 {
		out = append(out, protocol.FoldingRange{
			StartLine: lines[i],
			EndLine:   lines[i+1],
		})
	}
	return out, nil
}
