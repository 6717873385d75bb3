package providers

import (
	"go.lsp.dev/protocol"
)

// Command names for the two lint-filter commands spec §6.2 describes
// ("commands for filtering lint diagnostics by line or by file"). Not
// named explicitly in the wire contract; chosen to match this server's
// other "matlab.*" command namespace.
const (
	CommandFilterLintByLine = "matlab.filterLintByLine"
	CommandFilterLintByFile = "matlab.filterLintByFile"
)

// CodeActionProvider synthesizes quick fixes locally; it never round
// trips to the interpreter, spec §4.8.
type CodeActionProvider struct{}

func NewCodeActionProvider() *CodeActionProvider { return &CodeActionProvider{} }

// Actions returns one "suppress this diagnostic" and one "suppress in
// this file" code action per diagnostic under the cursor range.
func (p *CodeActionProvider) Actions(uri protocol.DocumentURI, diags []protocol.Diagnostic) []protocol.CodeAction {
	actions := make([]protocol.CodeAction, 0, len(diags)*2)
	for _, d := range diags {
		diag := d
		actions = append(actions,
			protocol.CodeAction{
				Title: "Suppress '" + d.Message + "' on this line",
				Kind:  protocol.QuickFix,
				Diagnostics: []protocol.Diagnostic{diag},
				Command: &protocol.Command{
					Title:     "Suppress on this line",
					Command:   CommandFilterLintByLine,
					Arguments: []interface{}{uri, diag.Range.Start.Line, diag.Code},
				},
			},
			protocol.CodeAction{
				Title: "Suppress '" + d.Message + "' in this file",
				Kind:  protocol.QuickFix,
				Diagnostics: []protocol.Diagnostic{diag},
				Command: &protocol.Command{
					Title:     "Suppress in this file",
					Command:   CommandFilterLintByFile,
					Arguments: []interface{}{uri, diag.Code},
				},
			},
		)
	}
	return actions
}
