package compiler

import (
	"reflect"
	"testing"
)

type lexResult struct {
	Kind        TokenKind
	StringValue string
	IntValue    uint64
}

func lexAll(t *testing.T, input string) []lexResult {
	t.Helper()
	l := NewLexer("test.b", []byte(input))
	var got []lexResult
	for {
		if !l.GetToken() {
			t.Fatalf("unexpected lexer error on input %q", input)
		}
		got = append(got, lexResult{l.Kind, l.StringValue, l.IntValue})
		if l.Kind == EOF {
			break
		}
	}
	return got
}

func TestGetToken(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []lexResult
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []lexResult{{Kind: EOF}},
		},
		{
			name:  "Punctuation",
			input: "+ - * / & == != <= >= << >> ; , { } ( ) [ ] ?",
			expected: []lexResult{
				{Kind: PLUS}, {Kind: MINUS}, {Kind: STAR}, {Kind: SLASH}, {Kind: AND},
				{Kind: EQUALS}, {Kind: NOT_EQ}, {Kind: LESS_EQ}, {Kind: GREATER_EQ},
				{Kind: SHL}, {Kind: SHR}, {Kind: SEMICOLON}, {Kind: COMMA},
				{Kind: LBRACE}, {Kind: RBRACE}, {Kind: LPAREN}, {Kind: RPAREN},
				{Kind: LBRACKET}, {Kind: RBRACKET}, {Kind: QUESTION}, {Kind: EOF},
			},
		},
		{
			name:  "Longest prefix match",
			input: "- -- -= << <<= <= <",
			expected: []lexResult{
				{Kind: MINUS}, {Kind: MINUS_MINUS}, {Kind: MINUS_ASSIGN},
				{Kind: SHL}, {Kind: SHL_ASSIGN}, {Kind: LESS_EQ}, {Kind: LESS},
				{Kind: EOF},
			},
		},
		{
			name:  "Keywords and identifiers",
			input: "auto extrn if else while goto return variable_1 _x",
			expected: []lexResult{
				{Kind: AUTO, StringValue: "auto"},
				{Kind: EXTRN, StringValue: "extrn"},
				{Kind: IF, StringValue: "if"},
				{Kind: ELSE, StringValue: "else"},
				{Kind: WHILE, StringValue: "while"},
				{Kind: GOTO, StringValue: "goto"},
				{Kind: RETURN, StringValue: "return"},
				{Kind: IDENT, StringValue: "variable_1"},
				{Kind: IDENT, StringValue: "_x"},
				{Kind: EOF},
			},
		},
		{
			name:  "Integer literals",
			input: "123 0 0x1A 0XFF 017",
			expected: []lexResult{
				{Kind: INTLIT, IntValue: 123},
				{Kind: INTLIT, IntValue: 0},
				{Kind: INTLIT, IntValue: 26},
				{Kind: INTLIT, IntValue: 255},
				{Kind: INTLIT, IntValue: 15},
				{Kind: EOF},
			},
		},
		{
			name:  "String literal with escapes",
			input: `"a\nb\tc\\d\"e"`,
			expected: []lexResult{
				{Kind: STRING, StringValue: "a\nb\tc\\d\"e"},
				{Kind: EOF},
			},
		},
		{
			name:  "Char literal single byte",
			input: `'a'`,
			expected: []lexResult{
				{Kind: CHARLIT, IntValue: uint64('a')},
				{Kind: EOF},
			},
		},
		{
			name:  "Char literal two bytes big-endian",
			input: `'ab'`,
			expected: []lexResult{
				{Kind: CHARLIT, IntValue: uint64('a')*0x100 + uint64('b')},
				{Kind: EOF},
			},
		},
		{
			name:  "Comments are skipped",
			input: "x // line comment\ny /* block\ncomment */ z",
			expected: []lexResult{
				{Kind: IDENT, StringValue: "x"},
				{Kind: IDENT, StringValue: "y"},
				{Kind: IDENT, StringValue: "z"},
				{Kind: EOF},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lexAll(t, tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("lexAll(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetTokenErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Unterminated string", `"abc`},
		{"Unterminated char", `'a`},
		{"Empty char literal", `''`},
		{"Oversized char literal", `'abc'`},
		{"Unknown token", "@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer("test.b", []byte(tt.input))
			for l.GetToken() {
				if l.Kind == EOF {
					t.Fatalf("expected a lexical error for input %q, got a clean EOF", tt.input)
				}
			}
			if l.Kind != ParseErrorToken {
				t.Errorf("Kind = %v, want ParseErrorToken", l.Kind)
			}
		})
	}
}

func TestSnapshotRestore(t *testing.T) {
	l := NewLexer("test.b", []byte("a b c"))
	if !l.GetToken() || l.StringValue != "a" {
		t.Fatalf("expected first token `a`")
	}
	saved := l.Snapshot()
	if !l.GetToken() || l.StringValue != "b" {
		t.Fatalf("expected second token `b`")
	}
	l.Restore(saved)
	if !l.GetToken() || l.StringValue != "b" {
		t.Fatalf("expected restored token `b` again, got %q", l.StringValue)
	}
}
