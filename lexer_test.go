package toml

import "testing"

func TestLexerNext(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{
			name:  "simple key value",
			input: `key = "value"`,
			want:  []TokenType{TokBareKey, TokWhitespace, TokEquals, TokWhitespace, TokBasicString, TokEOF},
		},
		{
			name:  "lone carriage return is whitespace, not a newline",
			input: "key\r = 1",
			want:  []TokenType{TokBareKey, TokWhitespace, TokEquals, TokWhitespace, TokInteger, TokEOF},
		},
		{
			name:  "comment to end of line",
			input: "# hello\nkey = 1",
			want:  []TokenType{TokComment, TokNewline, TokBareKey, TokWhitespace, TokEquals, TokWhitespace, TokInteger, TokEOF},
		},
		{
			name:  "unterminated basic string is an error token",
			input: `"abc`,
			want:  []TokenType{TokError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx := newLexer(tt.input)
			var got []TokenType
			for {
				tok := lx.Next()
				got = append(got, tok.Type)
				if tok.Type == TokEOF || tok.Type == TokError {
					break
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("token count = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLexerLoneCRIsWhitespace(t *testing.T) {
	lx := newLexer("a\rb = 1")
	first := lx.Next()
	if first.Type != TokBareKey || first.Text != "a" {
		t.Fatalf("first token = %v %q, want TokBareKey \"a\"", first.Type, first.Text)
	}
	second := lx.Next()
	if second.Type != TokWhitespace || second.Text != "\r" {
		t.Fatalf("second token = %v %q, want TokWhitespace \"\\r\"", second.Type, second.Text)
	}
	third := lx.Next()
	if third.Type != TokBareKey || third.Text != "b" {
		t.Fatalf("third token = %v %q, want TokBareKey \"b\"", third.Type, third.Text)
	}
}
