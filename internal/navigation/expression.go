// Package navigation implements findDefinition/findReferences, spec
// §4.6: dotted-identifier extraction at a cursor position, then a
// layered search over the symbol index and the path resolver.
package navigation

import (
	"regexp"

	"matlab-language-server/internal/symbols"
)

// dottedIdentifier matches spec §4.6's expression grammar:
// [A-Za-z_][A-Za-z_0-9]*(\.[A-Za-z_][A-Za-z_0-9]*)*
var dottedIdentifier = regexp.MustCompile(`[A-Za-z_][A-Za-z_0-9]*(\.[A-Za-z_][A-Za-z_0-9]*)*`)

// ExtractExpression finds the maximal dotted-identifier run on line that
// covers cursorChar and reports which component the cursor sits inside,
// spec §4.6. Returns ok=false if no match covers the cursor.
//
// A match's end character counts as covering the cursor (boundary
// invariant: "a match whose end equals the cursor character counts as
// covering... a match that ends strictly before does not").
func ExtractExpression(line string, cursorChar int) (symbols.Expression, bool) {
	for _, loc := range dottedIdentifier.FindAllStringIndex(line, -1) {
		start, end := loc[0], loc[1]
		if cursorChar < start || cursorChar > end {
			continue
		}
		text := line[start:end]
		components := splitDotted(text)

		cursorIdx := componentAt(components, cursorChar-start)
		return symbols.Expression{Components: components, CursorIdx: cursorIdx}, true
	}
	return symbols.Expression{}, false
}

func splitDotted(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '.' {
			out = append(out, text[start:i])
			start = i + 1
		}
	}
	out = append(out, text[start:])
	return out
}

// componentAt walks component lengths (plus one for each separating
// dot) to find which component offset falls inside.
func componentAt(components []string, offset int) int {
	pos := 0
	for i, c := range components {
		end := pos + len(c)
		if offset <= end {
			return i
		}
		pos = end + 1 // skip the dot
	}
	return len(components) - 1
}
