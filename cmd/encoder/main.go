// Command encoder implements the toml-test encoder protocol: it reads the
// BurntSushi tagged-JSON representation on stdin and writes TOML on
// stdout. Counterpart to cmd/decoder.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	toml "github.com/dottoml/toml"
)

func main() {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading stdin: %v\n", err)
		os.Exit(1)
	}

	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing JSON: %v\n", err)
		os.Exit(1)
	}

	doc := &toml.Document{}
	var rootEntries []*toml.KeyValue
	build(doc, &rootEntries, "", input)

	nodes := make([]toml.Node, 0, len(rootEntries)+len(doc.Nodes))
	for _, kv := range rootEntries {
		nodes = append(nodes, kv)
	}
	doc.Nodes = append(nodes, doc.Nodes...)

	fmt.Print(doc.String())
}

func isTaggedValue(m map[string]any) (typ, val string, ok bool) {
	if len(m) != 2 {
		return "", "", false
	}
	typ, ok1 := m["type"].(string)
	val, ok2 := m["value"].(string)
	return typ, val, ok1 && ok2
}

// isArrayOfTables reports whether every element of a JSON array is a plain
// (untagged) object, the tagged-JSON encoding of an array of tables.
func isArrayOfTables(arr []any) bool {
	if len(arr) == 0 {
		return false
	}
	for _, elem := range arr {
		m, ok := elem.(map[string]any)
		if !ok {
			return false
		}
		if _, _, tagged := isTaggedValue(m); tagged {
			return false
		}
	}
	return true
}

func headerParts(prefix, key string) []toml.KeyPart {
	var parts []toml.KeyPart
	if prefix != "" {
		for _, p := range strings.Split(prefix, ".") {
			parts = append(parts, toml.KeyPart{Text: p, Unquoted: p})
		}
	}
	return append(parts, toml.KeyPart{Text: key, Unquoted: key})
}

func joinHeader(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// build walks a tagged-JSON object, appending scalar/array leaves to
// entries and nested plain objects / arrays-of-tables as new top-level
// table nodes on doc, mirroring how a hand-written TOML file would
// structure the same data.
func build(doc *toml.Document, entries *[]*toml.KeyValue, prefix string, obj map[string]any) {
	for _, key := range sortedKeys(obj) {
		switch v := obj[key].(type) {
		case map[string]any:
			if typ, s, ok := isTaggedValue(v); ok {
				*entries = append(*entries, scalarKeyValue(key, typ, s))
				continue
			}
			tbl := &toml.TableNode{
				HeaderParts: headerParts(prefix, key),
				RawHeader:   joinHeader(prefix, key),
				Newline:     "\n",
			}
			doc.Nodes = append(doc.Nodes, tbl)
			build(doc, &tbl.Entries, joinHeader(prefix, key), v)
		case []any:
			if isArrayOfTables(v) {
				for _, elem := range v {
					m, _ := elem.(map[string]any)
					aot := &toml.ArrayOfTables{
						HeaderParts: headerParts(prefix, key),
						RawHeader:   joinHeader(prefix, key),
						Newline:     "\n",
					}
					doc.Nodes = append(doc.Nodes, aot)
					build(doc, &aot.Entries, joinHeader(prefix, key), m)
				}
				continue
			}
			*entries = append(*entries, &toml.KeyValue{
				KeyParts: []toml.KeyPart{{Text: key, Unquoted: key}},
				RawKey:   key,
				PreEq:    " ",
				PostEq:   " ",
				Val:      arrayNodeFrom(v),
				Newline:  "\n",
			})
		}
	}
}

func scalarKeyValue(key, typ, val string) *toml.KeyValue {
	return &toml.KeyValue{
		KeyParts: []toml.KeyPart{{Text: key, Unquoted: key}},
		RawKey:   key,
		PreEq:    " ",
		PostEq:   " ",
		Val:      scalarNodeFrom(typ, val),
		Newline:  "\n",
	}
}

func scalarNodeFrom(typ, val string) toml.Node {
	switch typ {
	case "string":
		return toml.NewString(val)
	case "integer":
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			n = 0
		}
		return toml.NewInteger(n)
	case "float":
		return floatNodeFrom(val)
	case "bool":
		return toml.NewBool(val == "true")
	case "datetime":
		return dateTimeNodeFrom(val, toml.DateTimeOffset)
	case "datetime-local":
		return dateTimeNodeFrom(val, toml.DateTimeLocal)
	case "date-local":
		return dateTimeNodeFrom(val, toml.DateOnly)
	case "time-local":
		return dateTimeNodeFrom(val, toml.TimeOnly)
	default:
		return toml.NewString(val)
	}
}

func floatNodeFrom(val string) toml.Node {
	switch val {
	case "+inf", "inf":
		return toml.NewFloat(math.Inf(1))
	case "-inf":
		return toml.NewFloat(math.Inf(-1))
	case "nan":
		return toml.NewFloat(math.NaN())
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		f = 0
	}
	return toml.NewFloat(f)
}

func dateTimeNodeFrom(val string, kind toml.DateTimeKind) toml.Node {
	layout := map[toml.DateTimeKind]string{
		toml.DateTimeOffset: "2006-01-02T15:04:05.999999999Z07:00",
		toml.DateTimeLocal:  "2006-01-02T15:04:05.999999999",
		toml.DateOnly:       "2006-01-02",
		toml.TimeOnly:       "15:04:05.999999999",
	}[kind]
	t, err := time.Parse(layout, val)
	if err != nil {
		t = time.Time{}
	}
	return toml.NewDateTime(t, kind)
}

func arrayNodeFrom(arr []any) *toml.ArrayNode {
	node := &toml.ArrayNode{}
	for _, elem := range arr {
		var val toml.Node
		switch v := elem.(type) {
		case map[string]any:
			if typ, s, ok := isTaggedValue(v); ok {
				val = scalarNodeFrom(typ, s)
			} else {
				val = inlineTableFrom(v)
			}
		case []any:
			val = arrayNodeFrom(v)
		}
		leading := " "
		if len(node.Cells) == 0 {
			leading = ""
		}
		node.Cells = append(node.Cells, toml.ArrayCell{Leading: leading, Value: val, HasComma: true})
	}
	if len(node.Cells) > 0 {
		node.Cells[len(node.Cells)-1].HasComma = false
	}
	return node
}

func inlineTableFrom(obj map[string]any) *toml.InlineTableNode {
	node := &toml.InlineTableNode{}
	keys := sortedKeys(obj)
	for i, key := range keys {
		var kv *toml.KeyValue
		switch v := obj[key].(type) {
		case map[string]any:
			if typ, s, ok := isTaggedValue(v); ok {
				kv = scalarKeyValue(key, typ, s)
			} else {
				kv = &toml.KeyValue{KeyParts: []toml.KeyPart{{Text: key, Unquoted: key}}, RawKey: key, PreEq: " ", PostEq: " ", Val: inlineTableFrom(v)}
			}
		case []any:
			kv = &toml.KeyValue{KeyParts: []toml.KeyPart{{Text: key, Unquoted: key}}, RawKey: key, PreEq: " ", PostEq: " ", Val: arrayNodeFrom(v)}
		}
		kv.Newline = ""
		trailing := ""
		if i == len(keys)-1 {
			trailing = " "
		}
		node.Cells = append(node.Cells, toml.InlineCell{Leading: " ", KV: kv, Trailing: trailing, HasComma: i < len(keys)-1})
	}
	return node
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
