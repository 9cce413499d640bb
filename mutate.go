package toml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// NewString builds a StringNode holding s, quoted as a single-line basic
// string with minimal escaping.
func NewString(s string) *StringNode {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return &StringNode{leafNode: newLeaf(NodeString, b.String(), 0, 0), Style: StyleBasic}
}

// NewInteger builds a NumberNode for an integer value in base 10.
func NewInteger(v int64) *NumberNode {
	return &NumberNode{leafNode: newLeaf(NodeNumber, strconv.FormatInt(v, 10), 0, 0)}
}

// NewFloat builds a NumberNode for a float value. Finite values always
// carry a decimal point or an exponent so they round-trip as a float rather
// than an integer; infinities and NaN are written as inf, -inf and nan.
func NewFloat(v float64) *NumberNode {
	var text string
	switch {
	case math.IsInf(v, 1):
		text = "inf"
	case math.IsInf(v, -1):
		text = "-inf"
	case math.IsNaN(v):
		text = "nan"
	default:
		text = strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(text, ".eE") {
			text += ".0"
		}
	}
	return &NumberNode{leafNode: newLeaf(NodeNumber, text, 0, 0)}
}

// NewBool builds a BooleanNode.
func NewBool(v bool) *BooleanNode {
	text := "false"
	if v {
		text = "true"
	}
	return &BooleanNode{leafNode: newLeaf(NodeBoolean, text, 0, 0)}
}

// NewDateTime builds a DateTimeNode rendering t per kind: offset and local
// date-time forms use RFC 3339 nanosecond precision (trailing zeros
// trimmed), date-only and time-only forms use their bare layouts.
func NewDateTime(t time.Time, kind DateTimeKind) *DateTimeNode {
	var text string
	switch kind {
	case DateTimeOffset:
		text = t.Format(time.RFC3339Nano)
	case DateTimeLocal:
		text = t.Format("2006-01-02T15:04:05.999999999")
	case DateOnly:
		text = t.Format("2006-01-02")
	default:
		text = t.Format("15:04:05.999999999")
	}
	return &DateTimeNode{leafNode: newLeaf(NodeDateTime, text, 0, 0), Kind: kind}
}

// NewArray builds an array literal from values in canonical minimal
// formatting ("[v1, v2, v3]"). Used as the replacement value passed to
// SetValue when turning a scalar, or a differently-shaped array, into an
// array (§4.D).
func NewArray(values []Node) *ArrayNode {
	arr := &ArrayNode{baseNode: baseNode{nodeType: NodeArray}}
	for i, v := range values {
		leading := " "
		if i == 0 {
			leading = ""
		}
		arr.Cells = append(arr.Cells, ArrayCell{Leading: leading, Value: v, HasComma: true})
	}
	if n := len(arr.Cells); n > 0 {
		arr.Cells[n-1].HasComma = false
	}
	return arr
}

// InlineTableField is one key/value pair passed to NewInlineTable, in the
// order it should appear.
type InlineTableField struct {
	Key   string
	Value Node
}

// NewInlineTable builds an inline-table literal from fields in canonical
// minimal formatting ("{ k1 = v1, k2 = v2 }"). Used the same way as
// NewArray, for the inline-table case of SetValue's shape change.
func NewInlineTable(fields []InlineTableField) *InlineTableNode {
	it := &InlineTableNode{baseNode: baseNode{nodeType: NodeInlineTable}}
	for i, f := range fields {
		trailing := ""
		if i == len(fields)-1 {
			trailing = " "
		}
		kv := &KeyValue{
			KeyParts: []KeyPart{{Text: f.Key, Unquoted: f.Key}},
			RawKey:   f.Key,
			PreEq:    " ",
			PostEq:   " ",
			Val:      f.Value,
		}
		it.Cells = append(it.Cells, InlineCell{Leading: " ", KV: kv, Trailing: trailing, HasComma: i < len(fields)-1})
	}
	return it
}

// SetValue replaces the value at path, applying §4.D's three
// format-preservation rules:
//
//   - scalar replacing a scalar: only the raw form changes, every
//     surrounding trivia slot (the owning KeyValue's or ArrayCell's) is
//     left untouched.
//   - array/inline-table replacing one of identical cell count and
//     per-position element kind: each cell keeps its own trivia, only its
//     value is swapped in.
//   - anything else (scalar <-> container, or a container whose shape
//     changed): the container's internal trivia is discarded and value is
//     used as given, in its own canonical minimal formatting; only the
//     surrounding line trivia (owned by the KeyValue/ArrayCell, untouched
//     here) is preserved.
//
// Table/array-of-tables insertion, deletion, and array append/splice are
// out of scope.
func (f *Facade) SetValue(path string, value Node) error {
	if f.doc == nil {
		return ErrNilInput
	}
	segs, err := parsePath(path)
	if err != nil {
		return err
	}
	res, ok := f.resolver().resolve(segs)
	if !ok {
		return fmt.Errorf("toml: path %q not found", path)
	}

	switch {
	case res.OwnerKV != nil:
		res.OwnerKV.Val = reconcileValue(res.OwnerKV.Val, value)
		return nil
	case res.ArrOwner != nil:
		res.ArrOwner.Cells[res.ArrIdx].Value = reconcileValue(res.ArrOwner.Cells[res.ArrIdx].Value, value)
		return nil
	default:
		return fmt.Errorf("toml: path %q does not refer to a settable value", path)
	}
}

// reconcileValue decides, per §4.D, whether value can reuse old's per-cell
// trivia (identical array/inline-table shape) or must replace it outright
// (scalar, or a shape change).
func reconcileValue(old, value Node) Node {
	switch n := value.(type) {
	case *ArrayNode:
		if o, ok := old.(*ArrayNode); ok && sameArrayShape(o, n) {
			return mergeArrayTrivia(o, n)
		}
	case *InlineTableNode:
		if o, ok := old.(*InlineTableNode); ok && sameInlineShape(o, n) {
			return mergeInlineTrivia(o, n)
		}
	}
	return value
}

func sameArrayShape(o, n *ArrayNode) bool {
	if len(o.Cells) != len(n.Cells) {
		return false
	}
	for i := range o.Cells {
		if arrayElementKind(o.Cells[i].Value) != arrayElementKind(n.Cells[i].Value) {
			return false
		}
	}
	return true
}

func mergeArrayTrivia(o, n *ArrayNode) *ArrayNode {
	merged := &ArrayNode{baseNode: o.baseNode, ClosingTrivia: o.ClosingTrivia}
	for i, oc := range o.Cells {
		merged.Cells = append(merged.Cells, ArrayCell{
			Leading:  oc.Leading,
			Value:    n.Cells[i].Value,
			Trailing: oc.Trailing,
			HasComma: oc.HasComma,
		})
	}
	return merged
}

func sameInlineShape(o, n *InlineTableNode) bool {
	if len(o.Cells) != len(n.Cells) {
		return false
	}
	for i := range o.Cells {
		if arrayElementKind(o.Cells[i].KV.Val) != arrayElementKind(n.Cells[i].KV.Val) {
			return false
		}
	}
	return true
}

func mergeInlineTrivia(o, n *InlineTableNode) *InlineTableNode {
	merged := &InlineTableNode{baseNode: o.baseNode, ClosingTrivia: o.ClosingTrivia}
	for i, oc := range o.Cells {
		nkv := n.Cells[i].KV
		kv := &KeyValue{
			baseNode:       oc.KV.baseNode,
			LeadingTrivia:  oc.KV.LeadingTrivia,
			KeyParts:       nkv.KeyParts,
			RawKey:         nkv.RawKey,
			PreEq:          oc.KV.PreEq,
			PostEq:         oc.KV.PostEq,
			Val:            nkv.Val,
			TrailingTrivia: oc.KV.TrailingTrivia,
			Newline:        oc.KV.Newline,
		}
		merged.Cells = append(merged.Cells, InlineCell{
			Leading:  oc.Leading,
			KV:       kv,
			Trailing: oc.Trailing,
			HasComma: oc.HasComma,
		})
	}
	return merged
}
