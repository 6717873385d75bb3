package providers

import (
	"context"
	"encoding/json"
	"time"

	"go.lsp.dev/protocol"

	"matlab-language-server/internal/bus"
	"matlab-language-server/internal/common"
)

// signatureHelp channels are not named in the core channel table; this
// server extrapolates the table's <request>/<response> convention.
const (
	signatureHelpRequestChannel  = "/signatureHelp/request"
	signatureHelpResponseChannel = "/signatureHelp/response"
)

type rawParameter struct {
	Label string `json:"label"`
	Doc   string `json:"documentation"`
}

type rawSignature struct {
	Label      string         `json:"label"`
	Doc        string         `json:"documentation"`
	Parameters []rawParameter `json:"parameters"`
}

type rawSignatureHelp struct {
	Signatures      []rawSignature `json:"signatures"`
	ActiveSignature uint32         `json:"activeSignature"`
	ActiveParameter uint32         `json:"activeParameter"`
}

// SignatureHelpProvider implements textDocument/signatureHelp, spec
// §4.8. Trigger characters "(" and "," are declared in lspserver's
// capabilities.
type SignatureHelpProvider struct{ base }

func NewSignatureHelpProvider(b *bus.Bus, conn ConnectionEnsurer, timeout time.Duration) *SignatureHelpProvider {
	return &SignatureHelpProvider{newBase(b, conn, timeout)}
}

func (p *SignatureHelpProvider) Help(ctx context.Context, code string, line, char int) (*protocol.SignatureHelp, error) {
	reqCtx, cancel, err := p.ensure(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	raw, err := p.bus.Call(reqCtx, signatureHelpRequestChannel, signatureHelpResponseChannel, map[string]interface{}{
		"code": code,
		"line": line,
		"char": char,
	})
	if err != nil {
		return nil, err
	}

	var reply rawSignatureHelp
	if err := json.Unmarshal(raw, &reply); err != nil {
		common.LSPLogger.Warn("signatureHelp: %v: %v", common.ErrMalformedReply, err)
		return nil, common.ErrMalformedReply
	}
	if len(reply.Signatures) == 0 {
		return nil, nil
	}

	sigs := make([]protocol.SignatureInformation, 0, len(reply.Signatures))
	for _, s := range reply.Signatures {
		params := make([]protocol.ParameterInformation, 0, len(s.Parameters))
		for _, pm := range s.Parameters {
			params = append(params, protocol.ParameterInformation{
				Label:         pm.Label,
				Documentation: pm.Doc,
			})
		}
		sigs = append(sigs, protocol.SignatureInformation{
			Label:         s.Label,
			Documentation: s.Doc,
			Parameters:    params,
		})
	}

	return &protocol.SignatureHelp{
		Signatures:      sigs,
		ActiveSignature: reply.ActiveSignature,
		ActiveParameter: reply.ActiveParameter,
	}, nil
}
