package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matlab-language-server/internal/common"
)

func fooRaw() RawCodeData {
	return RawCodeData{
		PackageName: "",
		Functions: []RawFunction{
			{
				Name:  "foo",
				Range: common.SourceRange{StartLine: 1, StartChar: 0, EndLine: 3, EndChar: 3},
				IsPublic: true,
				VariableInfo: map[string]RawVariableInfo{
					"x": {
						Definitions: []common.SourceRange{{StartLine: 1, StartChar: 11, EndLine: 1, EndChar: 12}},
						References:  []common.SourceRange{{StartLine: 1, StartChar: 18, EndLine: 1, EndChar: 19}},
					},
				},
			},
		},
		References: []RawRef{
			{Name: "foo", Range: common.SourceRange{StartLine: 5, StartChar: 0, EndLine: 5, EndChar: 3}},
		},
	}
}

func TestParseAndStoreReplacesPriorEntry(t *testing.T) {
	s := NewStore()
	uri := "file:///a/b.m"

	s.ParseAndStore(uri, fooRaw())
	data, ok := s.Get(uri)
	require.True(t, ok)
	assert.Equal(t, 1, data.Functions.Len())

	second := RawCodeData{Functions: []RawFunction{{Name: "bar", IsPublic: true}}}
	s.ParseAndStore(uri, second)

	data, ok = s.Get(uri)
	require.True(t, ok)
	assert.Equal(t, 1, data.Functions.Len())
	_, hasBar := data.Functions.Get("bar")
	assert.True(t, hasBar)
	_, hasFoo := data.Functions.Get("foo")
	assert.False(t, hasFoo)
}

func TestParseAndStoreIdempotent(t *testing.T) {
	s := NewStore()
	uri := "file:///a/b.m"
	raw := fooRaw()

	s.ParseAndStore(uri, raw)
	first, _ := s.Get(uri)

	s.ParseAndStore(uri, raw)
	second, _ := s.Get(uri)

	assert.Equal(t, first.Functions.Names(), second.Functions.Names())
	assert.Equal(t, first.References, second.References)
}

func TestClassFolderMergeSingleClassInfo(t *testing.T) {
	s := NewStore()

	classFile := RawCodeData{
		ClassInfo: RawClassInfo{
			IsClassDef:     true,
			HasClassInfo:   true,
			Name:           "K",
			ClassDefFolder: "@K",
		},
		Functions: []RawFunction{
			{Name: "bar", ParentClass: "K", IsPublic: true, IsPrototype: true},
		},
	}
	methodFile := RawCodeData{
		ClassInfo: RawClassInfo{
			HasClassInfo:   true,
			Name:           "K",
			ClassDefFolder: "@K",
		},
		Functions: []RawFunction{
			{Name: "bar", ParentClass: "K", IsPublic: true, Range: common.SourceRange{StartLine: 1, EndLine: 3}},
		},
	}

	s.ParseAndStore("file:///@K/K.m", classFile)
	s.ParseAndStore("file:///@K/bar.m", methodFile)

	classInfoK, ok := s.Class("K")
	require.True(t, ok)
	assert.Equal(t, 2, classInfoK.RefCount())

	barFn, ok := classInfoK.Methods.Get("bar")
	require.True(t, ok)
	// Last write (the @K/bar.m file) wins: no longer a prototype, and
	// its range is the one recorded.
	assert.False(t, barFn.IsPrototype)
	assert.Equal(t, 1, barFn.Range.StartLine)

	kFileData, _ := s.Get("file:///@K/K.m")
	barFileData, _ := s.Get("file:///@K/bar.m")
	assert.Same(t, classInfoK, kFileData.ClassInfo)
	assert.Same(t, classInfoK, barFileData.ClassInfo)
}

func TestClearDecrementsRefCount(t *testing.T) {
	s := NewStore()
	classFile := RawCodeData{ClassInfo: RawClassInfo{IsClassDef: true, HasClassInfo: true, Name: "K"}}

	s.ParseAndStore("file:///@K/K.m", classFile)
	c, _ := s.Class("K")
	assert.Equal(t, 1, c.RefCount())

	s.Clear("file:///@K/K.m")
	assert.Equal(t, 0, c.RefCount())
	assert.True(t, c.Orphaned())

	_, ok := s.Get("file:///@K/K.m")
	assert.False(t, ok)
	// The ClassInfo itself is never evicted (SPEC_FULL §9).
	_, ok = s.Class("K")
	assert.True(t, ok)
}

func TestFindContainingFunction(t *testing.T) {
	s := NewStore()
	uri := "file:///a/b.m"
	s.ParseAndStore(uri, fooRaw())

	fn := s.FindContainingFunction(uri, common.Position{Line: 2, Char: 0})
	require.NotNil(t, fn)
	assert.Equal(t, "foo", fn.Name)

	assert.Nil(t, s.FindContainingFunction(uri, common.Position{Line: 10, Char: 0}))
	assert.Nil(t, s.FindContainingFunction("file:///missing.m", common.Position{Line: 1, Char: 0}))
}

func TestExpressionHelpers(t *testing.T) {
	e := Expression{Components: []string{"pkg", "sub", "Cls", "PROP"}, CursorIdx: 2}
	assert.Equal(t, "pkg.sub.Cls.PROP", e.FullExpression())
	assert.Equal(t, "pkg.sub.Cls", e.TargetExpression())
	assert.Equal(t, "Cls", e.UnqualifiedTarget())
}
