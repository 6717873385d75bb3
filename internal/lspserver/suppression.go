package lspserver

import (
	"fmt"

	"go.lsp.dev/protocol"
)

func (s *Server) execFilterByLine(args []interface{}) error {
	if len(args) < 3 {
		return fmt.Errorf("lspserver: %s: expected 3 arguments, got %d", "filterLintByLine", len(args))
	}
	uri := fmt.Sprint(args[0])
	line := uint32(toFloat(args[1]))
	code := fmt.Sprint(args[2])

	s.mu.Lock()
	byLine, ok := s.suppressedLines[uri]
	if !ok {
		byLine = make(map[uint32]map[string]bool)
		s.suppressedLines[uri] = byLine
	}
	codes, ok := byLine[line]
	if !ok {
		codes = make(map[string]bool)
		byLine[line] = codes
	}
	codes[code] = true
	s.mu.Unlock()
	return nil
}

func (s *Server) execFilterByFile(args []interface{}) error {
	if len(args) < 2 {
		return fmt.Errorf("lspserver: %s: expected 2 arguments, got %d", "filterLintByFile", len(args))
	}
	uri := fmt.Sprint(args[0])
	code := fmt.Sprint(args[1])

	s.mu.Lock()
	codes, ok := s.suppressedFiles[uri]
	if !ok {
		codes = make(map[string]bool)
		s.suppressedFiles[uri] = codes
	}
	codes[code] = true
	s.mu.Unlock()
	return nil
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// filterDiagnostics drops any diagnostic this document has suppressed,
// either on its exact line or file-wide, spec §4.8's lint-filter
// commands.
func (s *Server) filterDiagnostics(uri string, diags []protocol.Diagnostic) []protocol.Diagnostic {
	s.mu.Lock()
	byLine := s.suppressedLines[uri]
	byFile := s.suppressedFiles[uri]
	s.mu.Unlock()

	if len(byLine) == 0 && len(byFile) == 0 {
		return diags
	}

	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		code := fmt.Sprint(d.Code)
		if byFile != nil && byFile[code] {
			continue
		}
		if lines, ok := byLine[d.Range.Start.Line]; ok && lines[code] {
			continue
		}
		out = append(out, d)
	}
	return out
}
