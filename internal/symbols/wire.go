package symbols

import (
	"encoding/json"
	"fmt"

	"matlab-language-server/internal/common"
)

// RawCodeData is the wire shape the interpreter returns for an indexed
// file, spec §6.1. parseAndStore normalizes it into FileCodeData/
// ClassInfo.
type RawCodeData struct {
	PackageName string        `json:"packageName"`
	ClassInfo   RawClassInfo  `json:"classInfo"`
	Functions   []RawFunction `json:"functionInfo"`
	References  []RawRef      `json:"references"`
}

// RawClassInfo is the classInfo sub-object of RawCodeData.
type RawClassInfo struct {
	IsClassDef     bool             `json:"isClassDef"`
	HasClassInfo   bool             `json:"hasClassInfo"`
	Name           string           `json:"name"`
	Range          common.SourceRange `json:"range"`
	Declaration    common.SourceRange `json:"declaration"`
	Properties     []RawMember      `json:"properties"`
	Enumerations   []RawMember      `json:"enumerations"`
	ClassDefFolder string           `json:"classDefFolder"`
	BaseClasses    []string         `json:"baseClasses"`
}

// RawMember is one property or enumeration entry.
type RawMember struct {
	Name       string             `json:"name"`
	Range      common.SourceRange `json:"range"`
	IsPublic   bool               `json:"isPublic"`
}

// RawFunction is one functionInfo entry.
type RawFunction struct {
	Name         string                     `json:"name"`
	ParentClass  string                     `json:"parentClass"`
	Range        common.SourceRange         `json:"range"`
	Declaration  *common.SourceRange        `json:"declaration,omitempty"`
	IsPublic     bool                       `json:"isPublic"`
	IsPrototype  bool                       `json:"isPrototype"`
	VariableInfo map[string]RawVariableInfo `json:"variableInfo"`
	Globals      []string                   `json:"globals"`
}

// RawVariableInfo is one variable's definition/reference ranges.
type RawVariableInfo struct {
	Definitions []common.SourceRange `json:"definitions"`
	References  []common.SourceRange `json:"references"`
}

// RawRef is one [name, range] reference-site pair, spec §6.1
// ("references[[name, range], ...]").
type RawRef struct {
	Name  string             `json:"name"`
	Range common.SourceRange `json:"range"`
}

// UnmarshalJSON accepts the two-element-tuple wire shape ["name", range].
func (r *RawRef) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("malformed reference tuple: %w", err)
	}
	if err := json.Unmarshal(tuple[0], &r.Name); err != nil {
		return fmt.Errorf("malformed reference name: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &r.Range); err != nil {
		return fmt.Errorf("malformed reference range: %w", err)
	}
	return nil
}

// MarshalJSON emits the [name, range] tuple shape, the mirror of
// UnmarshalJSON, used by tests constructing wire fixtures.
func (r RawRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{r.Name, r.Range})
}
