package toml

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/txtar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRoundTripFixtures checks the format-preservation invariant: a
// document that parses as Full serializes back byte-for-byte identical to
// its input.
func TestRoundTripFixtures(t *testing.T) {
	data, err := os.ReadFile("testdata/roundtrip.txtar")
	require.NoError(t, err)
	ar := txtar.Parse(data)
	require.NotEmpty(t, ar.Files)

	for _, file := range ar.Files {
		t.Run(file.Name, func(t *testing.T) {
			input := string(file.Data)
			f, result := Parse(input)
			require.IsType(t, Full{}, result, "unexpected parse errors: %v", result.Errors())
			assert.Equal(t, input, f.Document().String())
		})
	}
}

// TestScenarioFruitTable exercises the nested array-of-tables / inline /
// dotted-key resolution path end to end, the shape used throughout §4.D's
// examples.
func TestScenarioFruitTable(t *testing.T) {
	input := `[[fruit]]
name = "apple"

[fruit.physical]
color = "red"
shape = "round"

[[fruit.variety]]
name = "red delicious"

[[fruit.variety]]
name = "granny smith"

[[fruit]]
name = "banana"

[[fruit.variety]]
name = "plantain"
`
	f, result := Parse(input)
	require.IsType(t, Full{}, result)

	v, err := f.GetValue("fruit[0].variety[1].name")
	require.NoError(t, err)
	assert.Equal(t, "granny smith", v.(*StringNode).Value())

	v, err = f.GetValue("fruit[1].variety[0].name")
	require.NoError(t, err)
	assert.Equal(t, "plantain", v.(*StringNode).Value())

	children, err := f.GetChildren("fruit[0].physical")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "color", children[0].Key)
	assert.Equal(t, "shape", children[1].Key)
}
