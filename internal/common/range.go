package common

import "go.lsp.dev/protocol"

// SourceRange is the wire-level range convention used throughout this
// server: 1-based lines, 0-based characters, matching spec §6.1's stated
// convention for RawCodeData ranges.
type SourceRange struct {
	StartLine int `json:"lineStart"`
	StartChar int `json:"charStart"`
	EndLine   int `json:"lineEnd"`
	EndChar   int `json:"charEnd"`
}

// IsZero reports whether r is the zero-value fallback range used when a
// definition resolves to "open the file, no precise location."
func (r SourceRange) IsZero() bool {
	return r == SourceRange{}
}

// ToLSPRange converts a 1-based source range to the 0-based
// protocol.Range the LSP wire format requires.
func (r SourceRange) ToLSPRange() protocol.Range {
	startLine := r.StartLine - 1
	if startLine < 0 {
		startLine = 0
	}
	endLine := r.EndLine - 1
	if endLine < 0 {
		endLine = 0
	}
	return protocol.Range{
		Start: protocol.Position{Line: uint32(startLine), Character: uint32(r.StartChar)},
		End:   protocol.Position{Line: uint32(endLine), Character: uint32(r.EndChar)},
	}
}

// FromLSPPosition converts a 0-based LSP position to this server's
// 1-based line convention, keeping the character as-is.
func FromLSPPosition(p protocol.Position) (line, char int) {
	return int(p.Line) + 1, int(p.Character)
}

// Position is a single cursor location using this server's 1-based-line
// convention, the point counterpart to SourceRange.
type Position struct {
	Line int
	Char int
}

// FromLSP converts a 0-based LSP position into a Position.
func FromLSP(p protocol.Position) Position {
	line, char := FromLSPPosition(p)
	return Position{Line: line, Char: char}
}

// In reports whether p falls within r, inclusive of both endpoints.
func (p Position) In(r SourceRange) bool {
	afterStart := p.Line > r.StartLine || (p.Line == r.StartLine && p.Char >= r.StartChar)
	beforeEnd := p.Line < r.EndLine || (p.Line == r.EndLine && p.Char <= r.EndChar)
	return afterStart && beforeEnd
}

// Encloses reports whether r fully contains other.
func (r SourceRange) Encloses(other SourceRange) bool {
	startOK := other.StartLine > r.StartLine || (other.StartLine == r.StartLine && other.StartChar >= r.StartChar)
	endOK := other.EndLine < r.EndLine || (other.EndLine == r.EndLine && other.EndChar <= r.EndChar)
	return startOK && endOK
}
