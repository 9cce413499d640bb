package toml

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// NodeType identifies node kinds in the CST.
type NodeType int

const (
	NodeDocument NodeType = iota
	NodeKeyValue
	NodeTable
	NodeArrayOfTables
	NodeArray
	NodeInlineTable
	NodeString
	NodeNumber
	NodeBoolean
	NodeDateTime
	NodeComment
	NodeWhitespace
)

func (t NodeType) String() string {
	switch t {
	case NodeDocument:
		return "Document"
	case NodeKeyValue:
		return "KeyValue"
	case NodeTable:
		return "Table"
	case NodeArrayOfTables:
		return "ArrayOfTables"
	case NodeArray:
		return "Array"
	case NodeInlineTable:
		return "InlineTable"
	case NodeString:
		return "String"
	case NodeNumber:
		return "Number"
	case NodeBoolean:
		return "Boolean"
	case NodeDateTime:
		return "DateTime"
	case NodeComment:
		return "Comment"
	case NodeWhitespace:
		return "Whitespace"
	default:
		return "Unknown"
	}
}

// StringStyle tags the quoting style a StringNode was written with, so the
// serializer and the mutation policy (§4.D) can tell basic from literal and
// single-line from multi-line without re-scanning the raw text.
type StringStyle int

const (
	StyleBasic StringStyle = iota
	StyleLiteral
	StyleMultiLineBasic
	StyleMultiLineLiteral
)

// Node is the public CST node interface. Mutation happens through
// SetValue/constructors, never by rewriting a node's text directly -
// that would desynchronize cached decoded values from raw form.
type Node interface {
	Type() NodeType
	Line() int
	Col() int
	// Text renders this node back to the exact bytes it should occupy in
	// the serialized document.
	Text() string
}

// baseNode carries source position, shared by every concrete node type.
type baseNode struct {
	nodeType NodeType
	line     int
	col      int
}

func (b baseNode) Type() NodeType { return b.nodeType }
func (b baseNode) Line() int      { return b.line }
func (b baseNode) Col() int       { return b.col }

// leafNode is a scalar token: its Text is exactly its raw source form.
type leafNode struct {
	baseNode
	raw string
}

func newLeaf(t NodeType, raw string, line, col int) leafNode {
	return leafNode{baseNode: baseNode{nodeType: t, line: line, col: col}, raw: raw}
}

func (l leafNode) Text() string { return l.raw }

// CommentNode is a `# ...` comment, text includes the leading '#' but not
// the line terminator.
type CommentNode struct{ leafNode }

// WhitespaceNode is a run of spaces/tabs/newlines between significant
// tokens.
type WhitespaceNode struct{ leafNode }

// StringNode is a scalar string literal. Value() decodes escapes; Text()
// returns the raw quoted source form, preserved byte for byte.
type StringNode struct {
	leafNode
	Style StringStyle
}

// Value decodes the string's content, resolving escapes for basic strings
// and returning literal strings verbatim. Multi-line forms drop a newline
// that directly follows the opening delimiter.
func (s *StringNode) Value() string {
	switch s.Style {
	case StyleLiteral:
		return unquoteLiteralStr(s.raw)
	case StyleMultiLineBasic, StyleMultiLineLiteral:
		if len(s.raw) < 6 {
			return s.raw
		}
		inner := s.raw[3 : len(s.raw)-3]
		if strings.HasPrefix(inner, "\r\n") {
			inner = inner[2:]
		} else if strings.HasPrefix(inner, "\n") {
			inner = inner[1:]
		}
		if s.Style == StyleMultiLineLiteral {
			return inner
		}
		return parserProcessBasicEscapes(inner)
	default:
		return unquoteBasicStr(s.raw)
	}
}

// NumberNode is a scalar integer or float literal in its original textual
// form (underscores, base prefixes, exponent casing preserved).
type NumberNode struct{ leafNode }

func stripNumericUnderscores(s string) string {
	if !strings.ContainsRune(s, '_') {
		return s
	}
	return strings.ReplaceAll(s, "_", "")
}

// IsFloat reports whether the literal's textual form is a float rather than
// an integer (decimal point, exponent, or one of the special values).
func (n *NumberNode) IsFloat() bool {
	clean := stripNumericUnderscores(n.raw)
	switch clean {
	case "inf", "+inf", "-inf", "nan", "+nan", "-nan":
		return true
	}
	base := clean
	if strings.HasPrefix(base, "+") || strings.HasPrefix(base, "-") {
		base = base[1:]
	}
	hasBasePrefix := strings.HasPrefix(base, "0x") || strings.HasPrefix(base, "0o") || strings.HasPrefix(base, "0b")
	return strings.ContainsAny(clean, ".eE") && !hasBasePrefix
}

// Int decodes the literal as an integer, honoring 0x/0o/0b prefixes and
// underscores.
func (n *NumberNode) Int() (int64, error) {
	clean := stripNumericUnderscores(n.raw)
	neg := false
	switch {
	case strings.HasPrefix(clean, "+"):
		clean = clean[1:]
	case strings.HasPrefix(clean, "-"):
		clean = clean[1:]
		neg = true
	}
	var v int64
	var err error
	switch {
	case strings.HasPrefix(clean, "0x"):
		v, err = strconv.ParseInt(clean[2:], 16, 64)
	case strings.HasPrefix(clean, "0o"):
		v, err = strconv.ParseInt(clean[2:], 8, 64)
	case strings.HasPrefix(clean, "0b"):
		v, err = strconv.ParseInt(clean[2:], 2, 64)
	default:
		v, err = strconv.ParseInt(clean, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return v, nil
}

// Float decodes the literal as a float, including TOML's inf/nan spellings.
func (n *NumberNode) Float() (float64, error) {
	clean := stripNumericUnderscores(n.raw)
	switch clean {
	case "inf", "+inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan", "+nan", "-nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(clean, 64)
}

// BooleanNode is `true` or `false`.
type BooleanNode struct{ leafNode }

// Value decodes the boolean literal.
func (b *BooleanNode) Value() bool { return b.raw == "true" }

// DateTimeKind distinguishes the four RFC 3339 variants TOML allows.
type DateTimeKind int

const (
	DateTimeOffset DateTimeKind = iota
	DateTimeLocal
	DateOnly
	TimeOnly
)

// DateTimeNode is a scalar date/time literal in its original textual form.
type DateTimeNode struct {
	leafNode
	Kind DateTimeKind
}

// Time decodes the literal using the layout matching its Kind. Local
// (offset-less) forms decode in UTC; TOML does not assign them a zone.
func (d *DateTimeNode) Time() (time.Time, error) {
	switch d.Kind {
	case DateTimeOffset:
		return time.Parse(time.RFC3339Nano, normalizeDateTimeSeparator(d.raw))
	case DateTimeLocal:
		return time.Parse("2006-01-02T15:04:05.999999999", normalizeDateTimeSeparator(d.raw))
	case DateOnly:
		return time.Parse("2006-01-02", d.raw)
	default:
		return time.Parse("15:04:05.999999999", d.raw)
	}
}

func normalizeDateTimeSeparator(s string) string {
	if len(s) > 10 && (s[10] == ' ' || s[10] == 't' || s[10] == 'T') {
		return s[:10] + "T" + s[11:]
	}
	return s
}

// KeyPart is one fragment of a dotted key: either a bare identifier or a
// quoted string. Text is the literal source spelling (including quotes);
// Unquoted is the decoded key used for comparisons (§3.4, §4.D).
type KeyPart struct {
	Text      string
	Unquoted  string
	IsQuoted  bool
	Literal   bool   // true if the quote style was literal ('...') rather than basic
	DotBefore string // raw whitespace between the previous dot and this part
	DotAfter  string // raw whitespace between this part and the next dot
}

// ArrayCell is one element slot of an array literal, with the trivia
// surrounding it (§3.3: "Array and inline-table cells record: separator
// (or none for the last), whitespace/comment before the value, the value
// itself, whitespace/comment after the value").
type ArrayCell struct {
	Leading  string // raw ws/comments/newlines before Value
	Value    Node
	Trailing string // raw ws/comments/newlines after Value, before comma or ']'
	HasComma bool
}

// ArrayNode is a `[ ... ]` array literal.
type ArrayNode struct {
	baseNode
	Cells         []ArrayCell
	ClosingTrivia string // trivia between the final comma and ']' (trailing-comma case)
}

func (n *ArrayNode) Text() string {
	var b strings.Builder
	b.WriteByte('[')
	for _, c := range n.Cells {
		b.WriteString(c.Leading)
		if c.Value != nil {
			b.WriteString(c.Value.Text())
		}
		b.WriteString(c.Trailing)
		if c.HasComma {
			b.WriteByte(',')
		}
	}
	b.WriteString(n.ClosingTrivia)
	b.WriteByte(']')
	return b.String()
}

// Values returns the element nodes in order.
func (n *ArrayNode) Values() []Node {
	out := make([]Node, 0, len(n.Cells))
	for _, c := range n.Cells {
		out = append(out, c.Value)
	}
	return out
}

// InlineCell is one `key = value` slot inside an inline table literal.
type InlineCell struct {
	Leading  string // raw ws before the key
	KV       *KeyValue
	Trailing string // raw ws after the value, before comma or '}'
	HasComma bool
}

// InlineTableNode is a `{ ... }` inline table literal.
type InlineTableNode struct {
	baseNode
	Cells         []InlineCell
	ClosingTrivia string
}

func (n *InlineTableNode) Text() string {
	var b strings.Builder
	b.WriteByte('{')
	for _, c := range n.Cells {
		b.WriteString(c.Leading)
		b.WriteString(c.KV.Text())
		b.WriteString(c.Trailing)
		if c.HasComma {
			b.WriteByte(',')
		}
	}
	b.WriteString(n.ClosingTrivia)
	b.WriteByte('}')
	return b.String()
}

// Entries returns the inline table's key/value pairs in order.
func (n *InlineTableNode) Entries() []*KeyValue {
	out := make([]*KeyValue, 0, len(n.Cells))
	for _, c := range n.Cells {
		out = append(out, c.KV)
	}
	return out
}

// KeyValue is a single `key = value` line (at document root, inside a
// table body, or - with Newline == "" - inside an inline table).
type KeyValue struct {
	baseNode
	LeadingTrivia  []Node // comments/blank lines immediately before this line
	KeyParts       []KeyPart
	RawKey         string
	PreEq          string // whitespace between key and '='
	PostEq         string // whitespace between '=' and value
	Val            Node
	TrailingTrivia []Node // trailing whitespace/comment after the value, same line
	Newline        string // "\n", "\r\n", or "" at EOF / inside an inline table
}

func (k *KeyValue) Text() string {
	var b strings.Builder
	for _, t := range k.LeadingTrivia {
		b.WriteString(t.Text())
	}
	b.WriteString(k.RawKey)
	b.WriteString(k.PreEq)
	b.WriteByte('=')
	b.WriteString(k.PostEq)
	if k.Val != nil {
		b.WriteString(k.Val.Text())
	}
	for _, t := range k.TrailingTrivia {
		b.WriteString(t.Text())
	}
	b.WriteString(k.Newline)
	return b.String()
}

// KeyText returns the dotted, decoded text of the key ("a.b.c").
func (k *KeyValue) KeyText() string { return keyPartsToPath(k.KeyParts) }

// TableNode is a `[a.b]` standard table header and the flat sequence of
// key/value lines that follow it, up to the next header (§3.2).
type TableNode struct {
	baseNode
	LeadingTrivia  []Node
	RawHeader      string
	HeaderParts    []KeyPart
	Entries        []*KeyValue
	TrailingTrivia []Node
	Newline        string
}

func (t *TableNode) Text() string {
	var b strings.Builder
	for _, tv := range t.LeadingTrivia {
		b.WriteString(tv.Text())
	}
	b.WriteByte('[')
	b.WriteString(t.RawHeader)
	b.WriteByte(']')
	for _, tv := range t.TrailingTrivia {
		b.WriteString(tv.Text())
	}
	b.WriteString(t.Newline)
	for _, kv := range t.Entries {
		b.WriteString(kv.Text())
	}
	return b.String()
}

// HeaderText returns the dotted, decoded text of the header.
func (t *TableNode) HeaderText() string { return keyPartsToPath(t.HeaderParts) }

// ArrayOfTables is one `[[a.b]]` instance and its body (§3.2). Repeated
// headers with the same path produce repeated ArrayOfTables nodes at the
// document's top level, in order; the path engine groups them by header
// for bracket-index resolution (§4.D).
type ArrayOfTables struct {
	baseNode
	LeadingTrivia  []Node
	RawHeader      string
	HeaderParts    []KeyPart
	Entries        []*KeyValue
	TrailingTrivia []Node
	Newline        string
}

func (a *ArrayOfTables) Text() string {
	var b strings.Builder
	for _, tv := range a.LeadingTrivia {
		b.WriteString(tv.Text())
	}
	b.WriteString("[[")
	b.WriteString(a.RawHeader)
	b.WriteString("]]")
	for _, tv := range a.TrailingTrivia {
		b.WriteString(tv.Text())
	}
	b.WriteString(a.Newline)
	for _, kv := range a.Entries {
		b.WriteString(kv.Text())
	}
	return b.String()
}

// HeaderText returns the dotted, decoded text of the header.
func (a *ArrayOfTables) HeaderText() string { return keyPartsToPath(a.HeaderParts) }

// Document is the ordered top-level sequence of expressions (§3.2):
// KeyValue, TableNode and ArrayOfTables nodes, plus any trailing trivia
// that follows the last significant node.
type Document struct {
	Nodes          []Node
	TrailingTrivia []Node // trivia after the final node (e.g. a file ending in blank lines)
}

func (d *Document) Type() NodeType { return NodeDocument }
func (d *Document) Line() int      { return 0 }
func (d *Document) Col() int       { return 0 }

// String renders the document back to source text. For a document that was
// parsed and never mutated this is byte-identical to the original input
// (§3.5 invariant 1, §8 property 1).
func (d *Document) String() string {
	var b strings.Builder
	for _, n := range d.Nodes {
		b.WriteString(n.Text())
	}
	for _, t := range d.TrailingTrivia {
		b.WriteString(t.Text())
	}
	return b.String()
}

func (d *Document) Text() string { return d.String() }

// Walk traverses the document's top-level nodes depth first, in document
// order: for tables and arrays-of-tables their leading trivia, entries and
// trailing trivia; for key/value lines their trivia and value; for arrays
// and inline tables their elements. The document's own TrailingTrivia is
// not visited. The visitor returns false to stop early.
func (d *Document) Walk(visit func(Node) bool) {
	for _, n := range d.Nodes {
		if !walkNode(n, visit) {
			return
		}
	}
}

func walkNode(n Node, visit func(Node) bool) bool {
	if !visit(n) {
		return false
	}
	switch v := n.(type) {
	case *TableNode:
		for _, t := range v.LeadingTrivia {
			if !walkNode(t, visit) {
				return false
			}
		}
		for _, kv := range v.Entries {
			if !walkNode(kv, visit) {
				return false
			}
		}
		for _, t := range v.TrailingTrivia {
			if !walkNode(t, visit) {
				return false
			}
		}
	case *ArrayOfTables:
		for _, t := range v.LeadingTrivia {
			if !walkNode(t, visit) {
				return false
			}
		}
		for _, kv := range v.Entries {
			if !walkNode(kv, visit) {
				return false
			}
		}
		for _, t := range v.TrailingTrivia {
			if !walkNode(t, visit) {
				return false
			}
		}
	case *KeyValue:
		for _, t := range v.LeadingTrivia {
			if !walkNode(t, visit) {
				return false
			}
		}
		if v.Val != nil {
			if !walkNode(v.Val, visit) {
				return false
			}
		}
		for _, t := range v.TrailingTrivia {
			if !walkNode(t, visit) {
				return false
			}
		}
	case *ArrayNode:
		for _, c := range v.Cells {
			if c.Value != nil && !walkNode(c.Value, visit) {
				return false
			}
		}
	case *InlineTableNode:
		for _, c := range v.Cells {
			if !walkNode(c.KV, visit) {
				return false
			}
		}
	}
	return true
}
