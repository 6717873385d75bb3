// Package pathresolve wraps the interpreter's identifier-definition
// channel, spec §4.7. The resolution algorithm itself (private-folder
// lookup, class-folder shadowing, ancestor search, dotted-prefix
// recursion, byte-compiled extension substitution) runs inside the
// interpreter; this package only packages the request and validates the
// reply shape.
package pathresolve

import (
	"context"
	"encoding/json"
	"fmt"

	"matlab-language-server/internal/bus"
	"matlab-language-server/internal/common"
	"matlab-language-server/internal/symbols"
)

const (
	requestChannel  = "/findIdentifierDefinition/request"
	responseChannel = "/findIdentifierDefinition/response"
)

// FileInfo is the resolved file's already-computed code data plus,
// when the resolver had to fall back to the dotted-prefix recursion
// rule (spec §4.7 step 5), the flag marking that fact and the
// line/char at which the inner symbol was found.
type FileInfo struct {
	FileName             string              `json:"fileName"`
	Line                 int                 `json:"line"`
	Char                 int                 `json:"char"`
	RequiresSymbolSearch bool                `json:"requiresSymbolSearch"`
	CodeData             symbols.RawCodeData `json:"codeData"`
}

// Result is one entry of resolvePaths' reply, spec §4.7.
type Result struct {
	Identifier string    `json:"identifier"`
	URI        string    `json:"uri"`
	FileInfo   *FileInfo `json:"fileInfo,omitempty"`
}

// RequiresSymbolSearch reports whether the interpreter had to recurse on
// a dotted prefix to resolve this identifier (spec §4.7 step 5), which
// callers must additionally verify by checking the inner symbol exists
// in FileInfo.CodeData.
func (r Result) RequiresSymbolSearch() bool {
	return r.FileInfo != nil && r.FileInfo.RequiresSymbolSearch
}

// NotFound reports spec §8 invariant 9: a result with line <= 1 *and*
// the requires-symbol-search flag is treated as not-found. A direct
// (non-recursive) resolution leaves line at its zero value and never
// sets the flag, so it is never mistaken for not-found here.
func (r Result) NotFound() bool {
	if r.URI == "" {
		return true
	}
	if r.FileInfo == nil {
		return false
	}
	return r.FileInfo.RequiresSymbolSearch && r.FileInfo.Line <= 1
}

// Resolver packages resolvePaths requests onto the bus.
type Resolver struct {
	bus *bus.Bus
}

func New(b *bus.Bus) *Resolver {
	return &Resolver{bus: b}
}

// ResolvePaths asks the interpreter to resolve each identifier relative
// to contextURI, spec §4.7.
func (r *Resolver) ResolvePaths(ctx context.Context, identifiers []string, contextURI string) ([]Result, error) {
	payload := map[string]interface{}{
		"containingFile": contextURI,
		"identifiers":    identifiers,
	}

	raw, err := r.bus.Call(ctx, requestChannel, responseChannel, payload)
	if err != nil {
		return nil, fmt.Errorf("pathresolve: %w", err)
	}

	var results []Result
	if err := json.Unmarshal(raw, &results); err != nil {
		common.IndexLogger.Warn("pathresolve: malformed reply: %v", err)
		return nil, common.ErrMalformedReply
	}
	return results, nil
}
