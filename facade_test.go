package toml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFull(t *testing.T) {
	input := "title = \"Example\"\n\n[owner]\nname = \"Tom\"\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)
	assert.Empty(t, result.Errors())
	assert.Empty(t, result.Remainder())
	assert.Equal(t, input, f.Document().String())
}

func TestParseFullErrorRecordsAndContinues(t *testing.T) {
	input := "a = 1\na = 2\nb = [1, \"two\"]\n"
	f, result := Parse(input)
	require.IsType(t, FullError{}, result)
	assert.NotEmpty(t, result.Errors())
	assert.Empty(t, result.Remainder())

	// parsing continued past both problems: the mixed array b, defined after
	// the duplicate key, is still queryable.
	v, err := f.GetValue("b[1]")
	require.NoError(t, err)
	assert.Equal(t, "two", v.(*StringNode).Value())
}

func TestParseUnparseableLineIsSkippedAndResynchronized(t *testing.T) {
	input := "good = 1\n@@@ not a line\nalso_good = 2\n"
	f, result := Parse(input)
	require.IsType(t, FullError{}, result)

	errs := result.Errors()
	require.NotEmpty(t, errs)
	assert.Equal(t, UnparseableLine, errs[0].Kind)

	v, err := f.GetValue("also_good")
	require.NoError(t, err)
	n, err := v.(*NumberNode).Int()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestParsePartialOnUnterminatedString(t *testing.T) {
	input := "good = 1\nbad = \"unterminated\n"
	f, result := Parse(input)
	require.IsType(t, Partial{}, result)
	assert.NotEmpty(t, result.Remainder())

	v, err := f.GetValue("good")
	require.NoError(t, err)
	n, err := v.(*NumberNode).Int()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestParsePartialErrorCombinesBoth(t *testing.T) {
	input := "a = 1\na = 2\nbad = \"unterminated\n"
	f, result := Parse(input)
	require.IsType(t, PartialError{}, result)
	assert.NotEmpty(t, result.Errors())
	assert.NotEmpty(t, result.Remainder())
	require.NotNil(t, f.Document())
}

func TestParseEmptyDocument(t *testing.T) {
	f, result := Parse("")
	require.IsType(t, Full{}, result)
	assert.Equal(t, "", f.Document().String())
}

func TestParseBadStringEscapeReportsInvalidString(t *testing.T) {
	_, result := Parse(`bad = "no \q here"` + "\n")
	require.IsType(t, FullError{}, result)
	require.NotEmpty(t, result.Errors())
	assert.Equal(t, InvalidString, result.Errors()[0].Kind)
}

func TestParseMixedArrayIsFlaggedButNestedArraysAreNot(t *testing.T) {
	_, result := Parse("bad = [1, \"a\"]\n")
	require.IsType(t, FullError{}, result)
	require.Len(t, result.Errors(), 1)
	assert.Equal(t, MixedArray, result.Errors()[0].Kind)

	_, result = Parse("ok = [[1, 2], [\"a\", \"b\"]]\n")
	require.IsType(t, Full{}, result)
}
