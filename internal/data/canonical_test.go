package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"to":      "SignedIn",
		"actions": []string{"B", "A"},
		"seq":     int64(3),
		"event":   nil,
		"ok":      true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"actions":["B","A"],"event":null,"ok":true,"seq":3,"to":"SignedIn"}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	got, err := MarshalCanonical("a<b>&c")
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(got))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9.
	got, err := MarshalCanonical("cafe\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"caf\u00e9\"", string(got))
}

func TestMarshalCanonical_LineSeparators(t *testing.T) {
	got, err := MarshalCanonical("a\u2028b\u2029")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029\"", string(got))

	literal, err := MarshalCanonical(`x\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(literal), "escaped backslash stays escaped")
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D.. which sort before U+FF61.
	got, err := MarshalCanonical(map[string]any{"\uff61": 1, "\U0001F600": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uff61\":1}", string(got))
}

func TestMarshalCanonical_RejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"x": 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestMarshalCanonical_RejectsUnknownTypes(t *testing.T) {
	_, err := MarshalCanonical([]any{struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[0]")
}
