package toml

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cellTrivia reduces an array's cells to their Leading/Trailing/HasComma
// trivia, in order, for structural comparison with cmp.Diff independent of
// the cell values.
func cellTrivia(arr *ArrayNode) [][3]any {
	out := make([][3]any, len(arr.Cells))
	for i, c := range arr.Cells {
		out[i] = [3]any{c.Leading, c.Trailing, c.HasComma}
	}
	return out
}

func TestSetValueScalarPreservesTrivia(t *testing.T) {
	input := "# a comment\nname = \"Tom\"  # trailing\nage = 34\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	require.NoError(t, f.SetValue("name", NewString("Jerry")))
	require.NoError(t, f.SetValue("age", NewInteger(35)))

	got := f.Document().String()
	want := "# a comment\nname = \"Jerry\"  # trailing\nage = 35\n"
	assert.Equal(t, want, got)
}

func TestSetValueChangesShape(t *testing.T) {
	input := "count = 1\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	require.NoError(t, f.SetValue("count", NewFloat(1.5)))
	assert.Equal(t, "count = 1.5\n", f.Document().String())
}

func TestSetValueArrayElement(t *testing.T) {
	input := "nums = [1, 2, 3]\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	require.NoError(t, f.SetValue("nums[1]", NewInteger(20)))
	assert.Equal(t, "nums = [1, 20, 3]\n", f.Document().String())
}

func TestSetValueNestedTable(t *testing.T) {
	input := "[owner]\nname = \"Tom\"\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	require.NoError(t, f.SetValue("owner.name", NewString("Alice")))
	assert.Equal(t, "[owner]\nname = \"Alice\"\n", f.Document().String())
}

func TestSetValueUnknownPathErrors(t *testing.T) {
	f, result := Parse("a = 1\n")
	require.IsType(t, Full{}, result)
	assert.Error(t, f.SetValue("missing", NewInteger(1)))
}

func TestSetValueOnTablePathErrors(t *testing.T) {
	f, result := Parse("[owner]\nname = \"Tom\"\n")
	require.IsType(t, Full{}, result)
	assert.Error(t, f.SetValue("owner", NewInteger(1)))
}

// Identical shape (same cell count, same element kind per position):
// per-cell trivia is preserved, only the values change.
func TestSetValueWholeArraySameShapePreservesPerCellTrivia(t *testing.T) {
	input := "nums = [1,2,  3]\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	wantTrivia := cellTrivia(f.doc.Nodes[0].(*KeyValue).Val.(*ArrayNode))

	require.NoError(t, f.SetValue("nums", NewArray([]Node{NewInteger(20), NewInteger(30), NewInteger(40)})))
	assert.Equal(t, "nums = [20,30,  40]\n", f.Document().String())

	gotTrivia := cellTrivia(f.doc.Nodes[0].(*KeyValue).Val.(*ArrayNode))
	if diff := cmp.Diff(wantTrivia, gotTrivia); diff != "" {
		t.Errorf("per-cell trivia changed across SetValue (-want +got):\n%s", diff)
	}
}

// Different shape (here: different count and different element kind):
// the replacement is rendered in canonical minimal formatting instead.
func TestSetValueWholeArrayShapeChangeUsesCanonicalFormatting(t *testing.T) {
	input := "nums = [1, 2, 3]\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	require.NoError(t, f.SetValue("nums", NewArray([]Node{NewString("a"), NewString("b")})))
	assert.Equal(t, "nums = [\"a\", \"b\"]\n", f.Document().String())
}

func TestSetValueWholeInlineTableSameShapePreservesPerCellTrivia(t *testing.T) {
	input := "point = {x = 1,  y = 2}\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	newPoint := NewInlineTable([]InlineTableField{{Key: "x", Value: NewInteger(10)}, {Key: "y", Value: NewInteger(20)}})
	require.NoError(t, f.SetValue("point", newPoint))
	assert.Equal(t, "point = {x = 10,  y = 20}\n", f.Document().String())
}

func TestSetValueWholeInlineTableShapeChangeUsesCanonicalFormatting(t *testing.T) {
	input := "point = {x = 1, y = 2}\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	newPoint := NewInlineTable([]InlineTableField{{Key: "label", Value: NewString("origin")}})
	require.NoError(t, f.SetValue("point", newPoint))
	assert.Equal(t, "point = { label = \"origin\" }\n", f.Document().String())
}

func TestSetValueScalarToArrayUsesCanonicalFormatting(t *testing.T) {
	input := "count = 1\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	require.NoError(t, f.SetValue("count", NewArray([]Node{NewInteger(1), NewInteger(2)})))
	assert.Equal(t, "count = [1, 2]\n", f.Document().String())
}

func TestNewDateTime(t *testing.T) {
	ts := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	dt := NewDateTime(ts, DateOnly)
	assert.Equal(t, "2026-08-01", dt.Text())

	round, err := dt.Time()
	require.NoError(t, err)
	assert.Equal(t, 2026, round.Year())
}
