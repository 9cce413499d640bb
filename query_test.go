package toml

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// childKeys reduces a Child slice to its keys, in order, for structural
// comparison with cmp.Diff independent of the Node values it carries.
func childKeys(children []Child) []string {
	keys := make([]string, len(children))
	for i, c := range children {
		keys[i] = c.Key
	}
	return keys
}

// kvKeys reduces a KeyValue slice to its raw keys, in order.
func kvKeys(entries []*KeyValue) []string {
	keys := make([]string, len(entries))
	for i, kv := range entries {
		keys[i] = kv.RawKey
	}
	return keys
}

func TestFacadeGetValueScalars(t *testing.T) {
	input := "title = \"Example\"\n\n[owner]\nname = \"Tom\"\nage = 34\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	v, err := f.GetValue("title")
	require.NoError(t, err)
	assert.Equal(t, "Example", v.(*StringNode).Value())

	v, err = f.GetValue("owner.name")
	require.NoError(t, err)
	assert.Equal(t, "Tom", v.(*StringNode).Value())

	v, err = f.GetValue("owner.age")
	require.NoError(t, err)
	n, err := v.(*NumberNode).Int()
	require.NoError(t, err)
	assert.Equal(t, int64(34), n)
}

func TestFacadeGetValueArrayOfTables(t *testing.T) {
	input := `[[fruit]]
name = "apple"

[fruit.physical]
color = "red"

[[fruit.variety]]
name = "red delicious"

[[fruit]]
name = "banana"
`
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	v, err := f.GetValue("fruit[0].name")
	require.NoError(t, err)
	assert.Equal(t, "apple", v.(*StringNode).Value())

	v, err = f.GetValue("fruit[0].physical.color")
	require.NoError(t, err)
	assert.Equal(t, "red", v.(*StringNode).Value())

	v, err = f.GetValue("fruit[0].variety[0].name")
	require.NoError(t, err)
	assert.Equal(t, "red delicious", v.(*StringNode).Value())

	v, err = f.GetValue("fruit[1].name")
	require.NoError(t, err)
	assert.Equal(t, "banana", v.(*StringNode).Value())

	_, err = f.GetValue("fruit[2].name")
	assert.Error(t, err)
}

func TestFacadeGetValueInlineTableAndDottedKeys(t *testing.T) {
	input := "point = { x = 1, y = 2 }\nphysical.color = \"red\"\nphysical.shape = \"round\"\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	v, err := f.GetValue("point.x")
	require.NoError(t, err)
	n, err := v.(*NumberNode).Int()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	v, err = f.GetValue("physical.color")
	require.NoError(t, err)
	assert.Equal(t, "red", v.(*StringNode).Value())
}

func TestFacadeGetValueArrayIndex(t *testing.T) {
	input := "nums = [1, 2, 3]\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	v, err := f.GetValue("nums[1]")
	require.NoError(t, err)
	n, err := v.(*NumberNode).Int()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = f.GetValue("nums[5]")
	assert.Error(t, err)
}

func TestFacadeGetChildren(t *testing.T) {
	input := "[owner]\nname = \"Tom\"\nage = 34\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	children, err := f.GetChildren("owner")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"name", "age"}, childKeys(children)); diff != "" {
		t.Errorf("GetChildren(owner) keys mismatch (-want +got):\n%s", diff)
	}
}

func TestFacadeGetChildrenGroupsDottedKeys(t *testing.T) {
	input := "physical.color = \"red\"\nphysical.shape = \"round\"\n"
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	children, err := f.GetChildren("")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"physical"}, childKeys(children)); diff != "" {
		t.Errorf("GetChildren(\"\") keys mismatch (-want +got):\n%s", diff)
	}

	sub, ok := children[0].Value.(*InlineTableNode)
	require.True(t, ok)
	if diff := cmp.Diff([]string{"color", "shape"}, kvKeys(sub.Entries())); diff != "" {
		t.Errorf("nested physical keys mismatch (-want +got):\n%s", diff)
	}
}

func TestFacadeGetValueNotFound(t *testing.T) {
	f, result := Parse("a = 1\n")
	require.IsType(t, Full{}, result)

	_, err := f.GetValue("missing")
	assert.Error(t, err)
}

func TestFacadeOnEmptyFacade(t *testing.T) {
	f := New()
	_, err := f.GetValue("a")
	assert.ErrorIs(t, err, ErrNilInput)
}
