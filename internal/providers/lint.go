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
	lintRequestChannel  = "/linting/request"
	lintResponseChannel = "/linting/response"

	endStatementRequestChannel  = "/linting/endstatement/request"
	endStatementResponseChannel = "/linting/endstatement/response"
)

// rawLintRecord is one diagnostic the interpreter's linter produced,
// spec §6.1 ("lint-records").
type rawLintRecord struct {
	Range    common.SourceRange `json:"range"`
	Message  string             `json:"message"`
	Severity string             `json:"severity"`
	ID       string             `json:"id"`
}

// LintProvider produces the diagnostics the server publishes on didOpen
// and didSave, spec §4.8/§6.2; didChange does not lint. The lint-filter
// executeCommand pair is handled in internal/lspserver/suppression.go,
// not here.
type LintProvider struct{ base }

func NewLintProvider(b *bus.Bus, conn ConnectionEnsurer, timeout time.Duration) *LintProvider {
	return &LintProvider{newBase(b, conn, timeout)}
}

// Lint runs the interpreter's linter over code and converts every
// record into an LSP diagnostic.
func (p *LintProvider) Lint(ctx context.Context, code, fileName string) ([]protocol.Diagnostic, error) {
	reqCtx, cancel, err := p.ensure(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	raw, err := p.bus.Call(reqCtx, lintRequestChannel, lintResponseChannel, map[string]string{
		"code":     code,
		"fileName": fileName,
	})
	if err != nil {
		return nil, err
	}

	var records []rawLintRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		common.LSPLogger.Warn("linting: %v: %v", common.ErrMalformedReply, err)
		return nil, common.ErrMalformedReply
	}

	diags := make([]protocol.Diagnostic, 0, len(records))
	for _, r := range records {
		diags = append(diags, protocol.Diagnostic{
			Range:    r.Range.ToLSPRange(),
			Severity: lintSeverity(r.Severity),
			Source:   "matlab",
			Message:  r.Message,
			Code:     r.ID,
		})
	}
	return diags, nil
}

func lintSeverity(s string) protocol.DiagnosticSeverity {
	switch s {
	case "error":
		return protocol.DiagnosticSeverityError
	case "warning":
		return protocol.DiagnosticSeverityWarning
	case "hint":
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

// ResolveEndStatement asks the interpreter which line a block opened at
// lineNumber should close on, spec §6.1's `/linting/endstatement`
// channel pair.
func (p *LintProvider) ResolveEndStatement(ctx context.Context, code string, lineNumber int) (int, error) {
	reqCtx, cancel, err := p.ensure(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	raw, err := p.bus.Call(reqCtx, endStatementRequestChannel, endStatementResponseChannel, map[string]interface{}{
		"code":       code,
		"lineNumber": lineNumber,
	})
	if err != nil {
		return 0, err
	}

	var reply struct {
		LineNumber int `json:"lineNumber"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		common.LSPLogger.Warn("linting/endstatement: %v: %v", common.ErrMalformedReply, err)
		return 0, common.ErrMalformedReply
	}
	return reply.LineNumber, nil
}
