package symbols

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matlab-language-server/internal/common"
)

func TestRawRefTupleRoundTrip(t *testing.T) {
	ref := RawRef{Name: "foo", Range: common.SourceRange{StartLine: 1, StartChar: 2, EndLine: 1, EndChar: 5}}

	data, err := json.Marshal(ref)
	require.NoError(t, err)
	assert.JSONEq(t, `["foo", {"lineStart":1,"charStart":2,"lineEnd":1,"charEnd":5}]`, string(data))

	var got RawRef
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, ref, got)
}

func TestRawCodeDataUnmarshal(t *testing.T) {
	raw := []byte(`{
		"packageName": "pkg.sub",
		"classInfo": {"isClassDef": true, "hasClassInfo": true, "name": "Cls", "baseClasses": ["Base"]},
		"functionInfo": [{"name": "foo", "isPublic": true}],
		"references": [["foo", {"lineStart":1,"charStart":0,"lineEnd":1,"charEnd":3}]]
	}`)

	var data RawCodeData
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, "pkg.sub", data.PackageName)
	assert.True(t, data.ClassInfo.IsClassDef)
	assert.Equal(t, []string{"Base"}, data.ClassInfo.BaseClasses)
	require.Len(t, data.Functions, 1)
	assert.Equal(t, "foo", data.Functions[0].Name)
	require.Len(t, data.References, 1)
	assert.Equal(t, "foo", data.References[0].Name)
}
