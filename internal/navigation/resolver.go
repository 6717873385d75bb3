package navigation

import (
	"context"
	"path"
	"strings"

	"matlab-language-server/internal/common"
	"matlab-language-server/internal/pathresolve"
	"matlab-language-server/internal/symbols"
)

// TextSource supplies a single line of a document's text, the only
// thing the resolver needs beyond the symbol index to extract the
// cursor expression, spec §4.6.
type TextSource interface {
	Line(uri string, line int) (string, bool)
}

// PathResolver is the identifier-definition lookup navigation stage 4
// delegates to; satisfied by *pathresolve.Resolver.
type PathResolver interface {
	ResolvePaths(ctx context.Context, identifiers []string, contextURI string) ([]pathresolve.Result, error)
}

// Resolver implements findDefinition/findReferences, spec §4.6.
type Resolver struct {
	store    *symbols.Store
	resolver PathResolver
	text     TextSource
}

func New(store *symbols.Store, resolver PathResolver, text TextSource) *Resolver {
	return &Resolver{store: store, resolver: resolver, text: text}
}

// FindDefinition implements the five-stage search of spec §4.6.
func (r *Resolver) FindDefinition(ctx context.Context, uri string, pos common.Position) []symbols.Location {
	line, ok := r.text.Line(uri, pos.Line)
	if !ok {
		return nil
	}
	expr, ok := ExtractExpression(line, pos.Char)
	if !ok {
		return nil
	}

	data, haveData := r.store.Get(uri)

	// Stage 1: scope-local variable, only on component 0.
	if expr.CursorIdx == 0 && haveData {
		if fn := r.store.FindContainingFunction(uri, pos); fn != nil {
			if v, ok := fn.VariableInfo[expr.UnqualifiedTarget()]; ok && len(v.Definitions) > 0 {
				return rangesAt(uri, v.Definitions)
			}
		}
	}

	// Stage 2: in-file function (or class method for a class file).
	if haveData {
		if loc, ok := definitionStage2(data, expr.FullExpression(), uri); ok {
			return []symbols.Location{loc}
		}
	}

	// Stage 3: class member, only on component 1.
	if haveData && expr.CursorIdx == 1 {
		if loc, ok := definitionStage3(data, expr, uri); ok {
			return []symbols.Location{loc}
		}
	}

	// Stage 4: path-resolved external.
	if loc, ok := r.definitionStage4(ctx, expr, uri); ok {
		return []symbols.Location{loc}
	}

	// Stage 5: workspace-wide.
	if loc, ok := r.definitionStage5(expr.FullExpression(), uri); ok {
		return []symbols.Location{loc}
	}

	return nil
}

func rangesAt(uri string, ranges []common.SourceRange) []symbols.Location {
	out := make([]symbols.Location, len(ranges))
	for i, rg := range ranges {
		out[i] = symbols.Location{URI: uri, Range: rg}
	}
	return out
}

// definitionStage2 looks up fullExpression in data.Functions, falling
// back to the owning ClassInfo.Methods for a class file.
func definitionStage2(data *symbols.FileCodeData, fullExpression, uri string) (symbols.Location, bool) {
	if fn, ok := data.Functions.Get(fullExpression); ok {
		return symbols.Location{URI: uri, Range: fn.DeclarationRange()}, true
	}
	if data.IsClassDef && data.ClassInfo != nil {
		if fn, ok := data.ClassInfo.Methods.Get(fullExpression); ok {
			return symbols.Location{URI: uri, Range: fn.DeclarationRange()}, true
		}
	}
	return symbols.Location{}, false
}

// definitionStage3 implements spec §4.6 stage 3: only for a class file,
// only when the cursor sits on component 1, look up the last component
// in the class's properties.
func definitionStage3(data *symbols.FileCodeData, expr symbols.Expression, uri string) (symbols.Location, bool) {
	if !data.IsClassDef || data.ClassInfo == nil {
		return symbols.Location{}, false
	}
	last := expr.Components[len(expr.Components)-1]
	member, ok := data.ClassInfo.Properties.Get(last)
	if !ok {
		return symbols.Location{}, false
	}
	classURI := data.ClassInfo.URI
	if classURI == "" {
		classURI = uri
	}
	return symbols.Location{URI: classURI, Range: member.Range}, true
}

// definitionStage4 implements spec §4.6 stage 4: delegate to the path
// resolver, skip directory results, merge in codeData the resolver
// already fetched rather than issuing a second round trip, then retry
// stages 2-3 against the resolved file.
func (r *Resolver) definitionStage4(ctx context.Context, expr symbols.Expression, contextURI string) (symbols.Location, bool) {
	if r.resolver == nil {
		return symbols.Location{}, false
	}

	target := expr.TargetExpression()
	results, err := r.resolver.ResolvePaths(ctx, []string{target}, contextURI)
	if err != nil || len(results) == 0 {
		return symbols.Location{}, false
	}

	res := results[0]
	if res.NotFound() {
		return symbols.Location{}, false
	}
	if isDirectoryURI(res.URI) {
		return symbols.Location{}, false
	}

	data, haveData := r.store.Get(res.URI)
	if !haveData && res.FileInfo != nil {
		data = r.store.ParseAndStore(res.URI, res.FileInfo.CodeData)
		haveData = true
	}

	if haveData {
		if loc, ok := definitionStage2(data, expr.FullExpression(), res.URI); ok {
			return loc, true
		}
		if loc, ok := definitionStage3(data, expr, res.URI); ok {
			return loc, true
		}
	}

	// Fallback: open the file even without a precise symbol hit.
	return symbols.Location{URI: res.URI, Range: common.SourceRange{}}, true
}

// definitionStage5 implements spec §4.6 stage 5: scan every cached
// file's class/properties/enumerations/functions for a candidate whose
// qualified name matches fullExpression, never searching originURI.
func (r *Resolver) definitionStage5(fullExpression, originURI string) (symbols.Location, bool) {
	var found symbols.Location
	var ok bool

	r.store.Each(func(uri string, data *symbols.FileCodeData) {
		if ok || uri == originURI {
			return
		}

		data.Functions.Each(func(name string, fn *symbols.FunctionInfo) {
			if ok {
				return
			}
			if candidate := qualify(data.PackageName, "", name); candidate == fullExpression {
				found = symbols.Location{URI: uri, Range: fn.DeclarationRange()}
				ok = true
			}
		})
		if ok || data.ClassInfo == nil {
			return
		}

		className := data.ClassInfo.Name
		data.ClassInfo.Properties.Each(func(name string, m *symbols.MemberInfo) {
			if ok {
				return
			}
			if candidate := qualify(data.PackageName, className, name); candidate == fullExpression {
				found = symbols.Location{URI: uri, Range: m.Range}
				ok = true
			}
		})
		data.ClassInfo.Enumerations.Each(func(name string, m *symbols.MemberInfo) {
			if ok {
				return
			}
			if candidate := qualify(data.PackageName, className, name); candidate == fullExpression {
				found = symbols.Location{URI: uri, Range: m.Range}
				ok = true
			}
		})
		data.ClassInfo.Methods.Each(func(name string, fn *symbols.FunctionInfo) {
			if ok {
				return
			}
			if candidate := qualify(data.PackageName, className, name); candidate == fullExpression {
				found = symbols.Location{URI: uri, Range: fn.DeclarationRange()}
				ok = true
			}
		})
	})

	return found, ok
}

func qualify(packageName, className, member string) string {
	parts := []string{}
	if packageName != "" {
		parts = append(parts, packageName)
	}
	if className != "" {
		parts = append(parts, className)
	}
	parts = append(parts, member)
	return strings.Join(parts, ".")
}

func isDirectoryURI(uri string) bool {
	base := path.Base(uri)
	return !strings.Contains(base, ".")
}
