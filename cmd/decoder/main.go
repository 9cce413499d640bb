// Command decoder implements the toml-test decoder protocol: it reads TOML
// on stdin and writes the BurntSushi tagged-JSON representation on stdout,
// or a non-zero exit with a message on invalid input. It is the
// conformance harness driven by the toml-test tool directive in go.mod,
// not part of the library's public API.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	toml "github.com/dottoml/toml"
)

func main() {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading stdin: %v\n", err)
		os.Exit(1)
	}

	f, result := toml.Parse(string(data))
	if _, ok := result.(toml.Full); !ok {
		fmt.Fprintf(os.Stderr, "invalid TOML: %v\n", result.Errors())
		os.Exit(1)
	}

	out := documentToTaggedJSON(f.Document())
	jsonBytes, err := json.Marshal(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error marshaling JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(jsonBytes))
}

func documentToTaggedJSON(doc *toml.Document) map[string]any {
	root := make(map[string]any)
	for _, n := range doc.Nodes {
		switch v := n.(type) {
		case *toml.KeyValue:
			setNestedKey(root, v.KeyParts, valueToTagged(v.Val))
		case *toml.TableNode:
			tbl := resolveTablePath(root, v.HeaderParts)
			for _, kv := range v.Entries {
				setNestedKey(tbl, kv.KeyParts, valueToTagged(kv.Val))
			}
		case *toml.ArrayOfTables:
			parts := v.HeaderParts
			parent := resolveTablePath(root, parts[:len(parts)-1])
			lastKey := parts[len(parts)-1].Unquoted
			arr, _ := parent[lastKey].([]any)
			entry := make(map[string]any)
			for _, kv := range v.Entries {
				setNestedKey(entry, kv.KeyParts, valueToTagged(kv.Val))
			}
			parent[lastKey] = append(arr, entry)
		}
	}
	return root
}

// resolveTablePath navigates a path, following arrays-of-tables to their
// last element, creating intermediate tables as needed.
func resolveTablePath(root map[string]any, parts []toml.KeyPart) map[string]any {
	cur := root
	for _, p := range parts {
		key := p.Unquoted
		switch v := cur[key].(type) {
		case []any:
			if len(v) == 0 {
				m := make(map[string]any)
				cur[key] = []any{m}
				cur = m
			} else if m, ok := v[len(v)-1].(map[string]any); ok {
				cur = m
			}
		case map[string]any:
			cur = v
		default:
			sub := make(map[string]any)
			cur[key] = sub
			cur = sub
		}
	}
	return cur
}

func setNestedKey(m map[string]any, parts []toml.KeyPart, value any) {
	cur := m
	for i, p := range parts {
		key := p.Unquoted
		if i == len(parts)-1 {
			cur[key] = value
			return
		}
		sub, ok := cur[key].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			cur[key] = sub
		}
		cur = sub
	}
}

func tagged(typ, val string) map[string]string {
	return map[string]string{"type": typ, "value": val}
}

func valueToTagged(node toml.Node) any {
	switch n := node.(type) {
	case *toml.StringNode:
		return tagged("string", n.Value())
	case *toml.NumberNode:
		if n.IsFloat() {
			f, err := n.Float()
			if err != nil {
				return tagged("float", n.Text())
			}
			return tagged("float", formatFloat(f))
		}
		i, err := n.Int()
		if err != nil {
			return tagged("integer", n.Text())
		}
		return tagged("integer", strconv.FormatInt(i, 10))
	case *toml.BooleanNode:
		return tagged("bool", strconv.FormatBool(n.Value()))
	case *toml.DateTimeNode:
		return tagged(dateTimeTagName(n.Kind), n.Text())
	case *toml.ArrayNode:
		values := n.Values()
		result := make([]any, 0, len(values))
		for _, elem := range values {
			result = append(result, valueToTagged(elem))
		}
		return result
	case *toml.InlineTableNode:
		result := make(map[string]any)
		for _, kv := range n.Entries() {
			setNestedKey(result, kv.KeyParts, valueToTagged(kv.Val))
		}
		return result
	default:
		return tagged("string", node.Text())
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func dateTimeTagName(kind toml.DateTimeKind) string {
	switch kind {
	case toml.DateTimeOffset:
		return "datetime"
	case toml.DateTimeLocal:
		return "datetime-local"
	case toml.DateOnly:
		return "date-local"
	default:
		return "time-local"
	}
}
