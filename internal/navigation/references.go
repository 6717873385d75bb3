package navigation

import (
	"matlab-language-server/internal/common"
	"matlab-language-server/internal/symbols"
)

// FindReferences implements the two-stage search of spec §4.6.
func (r *Resolver) FindReferences(uri string, pos common.Position) []symbols.Location {
	line, ok := r.text.Line(uri, pos.Line)
	if !ok {
		return nil
	}
	expr, ok := ExtractExpression(line, pos.Char)
	if !ok {
		return nil
	}

	data, haveData := r.store.Get(uri)
	if !haveData {
		return nil
	}

	// Stage 1: scope-local variable.
	if expr.CursorIdx == 0 {
		if fn := r.store.FindContainingFunction(uri, pos); fn != nil {
			if v, ok := fn.VariableInfo[expr.UnqualifiedTarget()]; ok && len(v.References) > 0 {
				return rangesAt(uri, v.References)
			}
		}
	}

	// Stage 2: function references.
	name := expr.FullExpression()
	if fn, ok := data.Functions.Get(name); ok && fn.Visibility == symbols.Private {
		return rangesAt(uri, data.References[name])
	}

	var out []symbols.Location
	r.store.Each(func(fileURI string, fileData *symbols.FileCodeData) {
		if fn, ok := fileData.Functions.Get(name); ok && fn.Visibility == symbols.Private {
			return
		}
		if ranges, ok := fileData.References[name]; ok {
			out = append(out, rangesAt(fileURI, ranges)...)
		}
	})
	return out
}
