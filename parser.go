package toml

import (
	"fmt"
	"strconv"
	"strings"
)

// parser builds the CST from a token stream, recording non-fatal problems
// into a shared errorList and resynchronizing at the next line boundary
// instead of aborting (§7: "the parser continues after recording an
// error"). Only a lexer-level TokError (an unterminated string, or a token
// with no valid spelling at all) is fatal: it leaves no safe resync point,
// so parsing stops and the remainder of the input is reported unparsed.
type parser struct {
	lex      *lexer
	cur      Token
	errs     *errorList
	fatal    bool
	fatalPos int
}

func newParser(source string, errs *errorList) *parser {
	p := &parser{lex: newLexer(source), errs: errs}
	p.setCur(p.lex.Next())
	return p
}

func (p *parser) setCur(t Token) {
	p.cur = t
	if t.Type == TokError {
		p.fatal = true
		p.fatalPos = t.Pos
	}
}

func (p *parser) advance() Token {
	prev := p.cur
	p.setCur(p.lex.Next())
	return prev
}

func (p *parser) at(t TokenType) bool { return p.cur.Type == t }

// fail records a recoverable structural problem at the current token.
// Nothing is recorded once the lexer has produced a fatal error token: that
// failure is reported through the Partial/PartialError remainder instead.
func (p *parser) fail(msg string) {
	if p.fatal {
		return
	}
	p.errs.add(UnparseableLine, "", p.cur.Line, p.cur.Col, msg)
}

func (p *parser) failAt(tok Token, msg string) {
	p.errs.add(UnparseableLine, "", tok.Line, tok.Col, msg)
}

// resyncToNewline discards tokens up to and including the next newline (or
// EOF), the recovery unit used after a recoverable parse failure.
func (p *parser) resyncToNewline() {
	for !p.at(TokNewline) && !p.at(TokEOF) {
		p.advance()
		if p.fatal {
			return
		}
	}
	if p.at(TokNewline) {
		p.advance()
	}
}

// tableTarget is whatever top-level node currently receives key/value
// entries: a TableNode, an ArrayOfTables, or nil for the document root.
type tableTarget interface {
	addEntry(*KeyValue)
}

func (t *TableNode) addEntry(kv *KeyValue)     { t.Entries = append(t.Entries, kv) }
func (a *ArrayOfTables) addEntry(kv *KeyValue) { a.Entries = append(a.Entries, kv) }

// parse consumes the whole token stream and returns the document built so
// far. On a fatal error it returns everything parsed up to that point; the
// caller computes the unparsed remainder from p.fatalPos.
func (p *parser) parse() *Document {
	doc := &Document{}
	var ct tableTarget

	for {
		trivia := p.collectLeadingTrivia()
		if p.fatal {
			return doc
		}
		if p.at(TokEOF) {
			doc.TrailingTrivia = trivia
			return doc
		}

		if p.at(TokLBracket) {
			node, ok := p.parseTableOrArrayHeader(trivia)
			if p.fatal {
				return doc
			}
			if !ok {
				p.resyncToNewline()
				continue
			}
			doc.Nodes = append(doc.Nodes, node)
			ct = node.(tableTarget)
			continue
		}

		kv, ok := p.parseKeyVal(trivia)
		if p.fatal {
			return doc
		}
		if !ok {
			p.resyncToNewline()
			continue
		}
		if !p.addTrailingTrivia(kv) {
			if p.fatal {
				return doc
			}
			p.resyncToNewline()
			continue
		}

		if ct != nil {
			ct.addEntry(kv)
		} else {
			doc.Nodes = append(doc.Nodes, kv)
		}
	}
}

// collectLeadingTrivia gathers whitespace, newlines and comments preceding
// a statement. A malformed comment is recorded but does not abort parsing.
func (p *parser) collectLeadingTrivia() []Node {
	var nodes []Node
	for p.at(TokWhitespace) || p.at(TokNewline) || p.at(TokComment) {
		tok := p.advance()
		if p.fatal {
			return nodes
		}
		switch tok.Type { //nolint:exhaustive
		case TokComment:
			if msg := validateCommentText(tok.Text); msg != "" {
				p.failAt(tok, msg)
			}
			nodes = append(nodes, &CommentNode{leafNode: newLeaf(NodeComment, tok.Text, tok.Line, tok.Col)})
		default:
			nodes = append(nodes, &WhitespaceNode{leafNode: newLeaf(NodeWhitespace, tok.Text, tok.Line, tok.Col)})
		}
	}
	return nodes
}

// addTrailingTrivia collects same-line whitespace/comment after a root or
// table-body value and consumes the line terminator.
func (p *parser) addTrailingTrivia(kv *KeyValue) bool {
	if p.at(TokWhitespace) {
		tok := p.advance()
		kv.TrailingTrivia = append(kv.TrailingTrivia, &WhitespaceNode{leafNode: newLeaf(NodeWhitespace, tok.Text, tok.Line, tok.Col)})
	}
	if p.fatal {
		return false
	}
	if p.at(TokComment) {
		tok := p.advance()
		if msg := validateCommentText(tok.Text); msg != "" {
			p.failAt(tok, msg)
		}
		kv.TrailingTrivia = append(kv.TrailingTrivia, &CommentNode{leafNode: newLeaf(NodeComment, tok.Text, tok.Line, tok.Col)})
	}
	if p.fatal {
		return false
	}
	if p.at(TokNewline) {
		tok := p.advance()
		kv.Newline = tok.Text
		return true
	}
	if p.at(TokEOF) {
		return true
	}
	p.fail("expected newline or end of file after value")
	return false
}

// parseTableOrArrayHeader disambiguates '[' from '[['.
func (p *parser) parseTableOrArrayHeader(trivia []Node) (Node, bool) {
	hdrLine, hdrCol := p.cur.Line, p.cur.Col
	p.advance() // first [

	if p.at(TokLBracket) {
		p.advance() // second [
		return p.parseArrayOfTablesBody(trivia, hdrLine, hdrCol)
	}
	return p.parseTableHeaderBody(trivia, hdrLine, hdrCol)
}

func (p *parser) parseTableHeaderBody(trivia []Node, hdrLine, hdrCol int) (Node, bool) {
	rawHeader, parts, ok := p.parseKeyInHeader()
	if !ok || p.fatal {
		return nil, false
	}
	if !p.at(TokRBracket) {
		p.fail("expected ']' to close table header")
		return nil, false
	}
	p.advance()

	trailing, nl, ok := p.collectHeaderTrailing()
	if !ok {
		return nil, false
	}

	return &TableNode{
		baseNode:       baseNode{nodeType: NodeTable, line: hdrLine, col: hdrCol},
		LeadingTrivia:  trivia,
		RawHeader:      rawHeader,
		HeaderParts:    parts,
		TrailingTrivia: trailing,
		Newline:        nl,
	}, true
}

func (p *parser) parseArrayOfTablesBody(trivia []Node, hdrLine, hdrCol int) (Node, bool) {
	rawHeader, parts, ok := p.parseKeyInHeader()
	if !ok || p.fatal {
		return nil, false
	}
	if !p.at(TokRBracket) {
		p.fail("expected ']]' to close array of tables header")
		return nil, false
	}
	p.advance()
	if !p.at(TokRBracket) {
		p.fail("expected ']]' to close array of tables header")
		return nil, false
	}
	p.advance()

	trailing, nl, ok := p.collectHeaderTrailing()
	if !ok {
		return nil, false
	}

	return &ArrayOfTables{
		baseNode:       baseNode{nodeType: NodeArrayOfTables, line: hdrLine, col: hdrCol},
		LeadingTrivia:  trivia,
		RawHeader:      rawHeader,
		HeaderParts:    parts,
		TrailingTrivia: trailing,
		Newline:        nl,
	}, true
}

func (p *parser) collectHeaderTrailing() ([]Node, string, bool) {
	var nodes []Node
	if p.at(TokWhitespace) {
		tok := p.advance()
		nodes = append(nodes, &WhitespaceNode{leafNode: newLeaf(NodeWhitespace, tok.Text, tok.Line, tok.Col)})
	}
	if p.fatal {
		return nil, "", false
	}
	if p.at(TokComment) {
		tok := p.advance()
		if msg := validateCommentText(tok.Text); msg != "" {
			p.failAt(tok, msg)
		}
		nodes = append(nodes, &CommentNode{leafNode: newLeaf(NodeComment, tok.Text, tok.Line, tok.Col)})
	}
	if p.fatal {
		return nil, "", false
	}
	nl := ""
	if p.at(TokNewline) {
		tok := p.advance()
		nl = tok.Text
	} else if !p.at(TokEOF) {
		p.fail("expected newline or end of file after table header")
		return nil, "", false
	}
	return nodes, nl, true
}

// parseKeyInHeader parses the key between [ and ] (or [[ and ]]).
func (p *parser) parseKeyInHeader() (string, []KeyPart, bool) {
	var raw strings.Builder
	if p.at(TokWhitespace) {
		raw.WriteString(p.cur.Text)
		p.advance()
	}
	parts, keyRaw, ok := p.parseKey()
	if !ok {
		return "", nil, false
	}
	raw.WriteString(keyRaw)
	if p.at(TokWhitespace) {
		raw.WriteString(p.cur.Text)
		p.advance()
	}
	return raw.String(), parts, true
}

// parseKey parses a simple or dotted key.
func (p *parser) parseKey() ([]KeyPart, string, bool) {
	var parts []KeyPart
	var raw strings.Builder

	part, ok := p.parseSimpleKey()
	if !ok {
		return nil, "", false
	}
	raw.WriteString(part.Text)
	parts = append(parts, part)

	for p.at(TokDot) || (p.at(TokWhitespace) && p.lex.peekForDot()) {
		dotBefore := ""
		if p.at(TokWhitespace) {
			dotBefore = p.cur.Text
			raw.WriteString(dotBefore)
			p.advance()
		}
		if !p.at(TokDot) {
			break
		}
		raw.WriteString(".")
		p.advance()

		dotAfter := ""
		if p.at(TokWhitespace) {
			dotAfter = p.cur.Text
			raw.WriteString(dotAfter)
			p.advance()
		}

		part, ok = p.parseSimpleKey()
		if !ok {
			return nil, "", false
		}
		part.DotBefore = dotBefore
		part.DotAfter = dotAfter
		raw.WriteString(part.Text)
		parts = append(parts, part)
	}

	return parts, raw.String(), true
}

func (p *parser) parseSimpleKey() (KeyPart, bool) {
	switch p.cur.Type { //nolint:exhaustive
	case TokBareKey:
		tok := p.advance()
		for _, r := range tok.Text {
			if !isBareKeyChar(r) {
				p.failAt(tok, fmt.Sprintf("invalid character %q in bare key %q", r, tok.Text))
				return KeyPart{}, false
			}
		}
		return KeyPart{Text: tok.Text, Unquoted: tok.Text}, true
	case TokBoolean, TokInteger, TokFloat, TokDateTime:
		tok := p.advance()
		return KeyPart{Text: tok.Text, Unquoted: tok.Text}, true
	case TokBasicString:
		tok := p.advance()
		if msg := validateStringText(tok.Text); msg != "" {
			p.errs.add(InvalidString, "", tok.Line, tok.Col, msg)
		}
		return KeyPart{Text: tok.Text, Unquoted: unquoteBasicStr(tok.Text), IsQuoted: true}, true
	case TokLiteralString:
		tok := p.advance()
		if msg := validateStringText(tok.Text); msg != "" {
			p.errs.add(InvalidString, "", tok.Line, tok.Col, msg)
		}
		return KeyPart{Text: tok.Text, Unquoted: unquoteLiteralStr(tok.Text), IsQuoted: true, Literal: true}, true
	default:
		p.fail("expected key")
		return KeyPart{}, false
	}
}

func isBareKeyChar(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9') || r == '-' || r == '_'
}

// parseKeyVal parses "key = value" without consuming trailing trivia or the
// line terminator: the root-level loop and the inline-table loop each
// decide what follows (a newline, or a ',' / '}').
func (p *parser) parseKeyVal(trivia []Node) (*KeyValue, bool) {
	kvLine, kvCol := p.cur.Line, p.cur.Col
	parts, rawKey, ok := p.parseKey()
	if !ok || p.fatal {
		return nil, false
	}

	preEq := ""
	if p.at(TokWhitespace) {
		preEq = p.cur.Text
		p.advance()
	}
	if !p.at(TokEquals) {
		p.fail("expected '='")
		return nil, false
	}
	p.advance()

	prevValueMode := p.lex.valueMode
	p.lex.valueMode = true

	postEq := ""
	if p.at(TokWhitespace) {
		postEq = p.cur.Text
		p.advance()
	}

	val, ok := p.parseValue()
	p.lex.valueMode = prevValueMode
	if !ok || p.fatal {
		return nil, false
	}

	return &KeyValue{
		baseNode:      baseNode{nodeType: NodeKeyValue, line: kvLine, col: kvCol},
		LeadingTrivia: trivia,
		KeyParts:      parts,
		RawKey:        rawKey,
		PreEq:         preEq,
		PostEq:        postEq,
		Val:           val,
	}, true
}

func (p *parser) parseValue() (Node, bool) {
	switch p.cur.Type { //nolint:exhaustive
	case TokBasicString, TokMultiLineBasicStr, TokLiteralString, TokMultiLineLiteralStr:
		return p.parseStringValue()
	case TokInteger, TokFloat:
		return p.parseNumberValue()
	case TokBoolean:
		tok := p.advance()
		return &BooleanNode{leafNode: newLeaf(NodeBoolean, tok.Text, tok.Line, tok.Col)}, true
	case TokDateTime:
		return p.parseDateTimeValue()
	case TokLBracket:
		return p.parseArray()
	case TokLBrace:
		return p.parseInlineTable()
	default:
		p.fail("expected value")
		return nil, false
	}
}

func stringStyleOf(typ TokenType) StringStyle {
	switch typ { //nolint:exhaustive
	case TokMultiLineBasicStr:
		return StyleMultiLineBasic
	case TokLiteralString:
		return StyleLiteral
	case TokMultiLineLiteralStr:
		return StyleMultiLineLiteral
	default:
		return StyleBasic
	}
}

func (p *parser) parseStringValue() (Node, bool) {
	tok := p.advance()
	if msg := validateStringText(tok.Text); msg != "" {
		p.errs.add(InvalidString, "", tok.Line, tok.Col, msg)
	}
	return &StringNode{
		leafNode: newLeaf(NodeString, tok.Text, tok.Line, tok.Col),
		Style:    stringStyleOf(tok.Type),
	}, true
}

func (p *parser) parseNumberValue() (Node, bool) {
	tok := p.advance()
	kind := InvalidInteger
	if tok.Type == TokFloat {
		kind = InvalidFloat
	}
	if msg := validateNumberText(tok.Text); msg != "" {
		p.errs.add(kind, "", tok.Line, tok.Col, msg)
	}
	return &NumberNode{leafNode: newLeaf(NodeNumber, tok.Text, tok.Line, tok.Col)}, true
}

func (p *parser) parseDateTimeValue() (Node, bool) {
	tok := p.advance()
	if msg := validateDateTimeText(tok.Text); msg != "" {
		p.errs.add(InvalidDateTime, "", tok.Line, tok.Col, msg)
	}
	return &DateTimeNode{
		leafNode: newLeaf(NodeDateTime, tok.Text, tok.Line, tok.Col),
		Kind:     dateTimeKindOf(tok.Text),
	}, true
}

// collectBracketTrivia gathers whitespace/comments/newlines between array
// or inline-table cells as a single raw string, the trivia representation
// ArrayCell/InlineCell record (§3.3).
func (p *parser) collectBracketTrivia() string {
	var b strings.Builder
	for p.at(TokWhitespace) || p.at(TokNewline) || p.at(TokComment) {
		tok := p.advance()
		if p.fatal {
			return b.String()
		}
		if tok.Type == TokComment {
			if msg := validateCommentText(tok.Text); msg != "" {
				p.failAt(tok, msg)
			}
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

func (p *parser) parseArray() (Node, bool) {
	node := &ArrayNode{baseNode: baseNode{nodeType: NodeArray, line: p.cur.Line, col: p.cur.Col}}
	p.advance() // [
	prevValueMode := p.lex.valueMode

	for {
		leading := p.collectBracketTrivia()
		if p.fatal {
			return nil, false
		}
		if p.at(TokRBracket) {
			node.ClosingTrivia = leading
			p.advance()
			p.lex.valueMode = prevValueMode
			return node, true
		}
		if p.at(TokEOF) {
			p.fail("expected ']' to close array")
			return nil, false
		}

		p.lex.valueMode = true
		val, ok := p.parseValue()
		if !ok || p.fatal {
			return nil, false
		}
		p.lex.valueMode = true

		trailing := p.collectBracketTrivia()
		if p.fatal {
			return nil, false
		}

		hasComma := false
		if p.at(TokComma) {
			hasComma = true
			p.advance()
		} else if !p.at(TokRBracket) {
			p.fail("expected ',' or ']' in array")
			return nil, false
		}

		node.Cells = append(node.Cells, ArrayCell{Leading: leading, Value: val, Trailing: trailing, HasComma: hasComma})
	}
}

func (p *parser) parseInlineTable() (Node, bool) {
	node := &InlineTableNode{baseNode: baseNode{nodeType: NodeInlineTable, line: p.cur.Line, col: p.cur.Col}}
	prevValueMode := p.lex.valueMode
	p.lex.valueMode = false
	p.advance() // {

	for {
		leading := p.collectBracketTrivia()
		if p.fatal {
			return nil, false
		}
		if p.at(TokRBrace) {
			node.ClosingTrivia = leading
			p.advance()
			p.lex.valueMode = prevValueMode
			return node, true
		}
		if p.at(TokEOF) {
			p.fail("expected '}' to close inline table")
			return nil, false
		}

		kv, ok := p.parseKeyVal(nil)
		if !ok || p.fatal {
			return nil, false
		}

		trailing := p.collectBracketTrivia()
		if p.fatal {
			return nil, false
		}

		hasComma := false
		if p.at(TokComma) {
			hasComma = true
			p.advance()
		} else if !p.at(TokRBrace) {
			p.fail("expected ',' or '}' in inline table")
			return nil, false
		}

		node.Cells = append(node.Cells, InlineCell{Leading: leading, KV: kv, Trailing: trailing, HasComma: hasComma})
	}
}

func unquoteBasicStr(s string) string {
	if len(s) < 2 {
		return s
	}
	return parserProcessBasicEscapes(s[1 : len(s)-1])
}

func unquoteLiteralStr(s string) string {
	if len(s) < 2 {
		return s
	}
	return s[1 : len(s)-1]
}

//nolint:gocyclo
func parserProcessBasicEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i >= len(s) {
			b.WriteByte('\\')
			break
		}
		switch s[i] {
		case 'b':
			b.WriteByte('\b')
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'f':
			b.WriteByte('\f')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'e':
			b.WriteByte(0x1B)
		case 'x':
			if i+2 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+3], 16, 32); err == nil {
					b.WriteRune(rune(n))
					i += 2
					continue
				}
			}
			b.WriteString(`\x`)
		case 'u':
			if i+4 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					b.WriteRune(rune(n))
					i += 4
					continue
				}
			}
			b.WriteString(`\u`)
		case 'U':
			if i+8 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+9], 16, 32); err == nil {
					b.WriteRune(rune(n))
					i += 8
					continue
				}
			}
			b.WriteString(`\U`)
		case ' ', '\t', '\r', '\n':
			// line-ending backslash: drop it and all whitespace/newlines after it
			if hasNewlineAfterWs(s, i) {
				i = skipToNextNonWs(s, i)
				continue
			}
			b.WriteByte('\\')
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
