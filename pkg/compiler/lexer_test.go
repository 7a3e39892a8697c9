package compiler

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/smasonuk/simplecc/pkg/diag"
)

func lexAll(t *testing.T, src string) ([]Token, *diag.Reporter) {
	t.Helper()
	var buf bytes.Buffer
	rep := diag.New(&buf, "test")
	lex := NewLexer(src, rep)
	var toks []Token
	for {
		tok := lex.Next()
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks, rep
}

func TestLexBasicTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "empty",
			input: "",
			expected: []Token{
				{Type: EOF, Line: 1},
			},
		},
		{
			name:  "punctuators longest match first",
			input: "... && || <= >= == != < > = + - * / % ! &",
			expected: []Token{
				{Type: ELLIPSIS, Lexeme: "...", Line: 1},
				{Type: AND_AND, Lexeme: "&&", Line: 1},
				{Type: OR_OR, Lexeme: "||", Line: 1},
				{Type: LE, Lexeme: "<=", Line: 1},
				{Type: GE, Lexeme: ">=", Line: 1},
				{Type: EQ, Lexeme: "==", Line: 1},
				{Type: NE, Lexeme: "!=", Line: 1},
				{Type: LT, Lexeme: "<", Line: 1},
				{Type: GT, Lexeme: ">", Line: 1},
				{Type: ASSIGN, Lexeme: "=", Line: 1},
				{Type: PLUS, Lexeme: "+", Line: 1},
				{Type: MINUS, Lexeme: "-", Line: 1},
				{Type: STAR, Lexeme: "*", Line: 1},
				{Type: SLASH, Lexeme: "/", Line: 1},
				{Type: PERCENT, Lexeme: "%", Line: 1},
				{Type: BANG, Lexeme: "!", Line: 1},
				{Type: AMP, Lexeme: "&", Line: 1},
				{Type: EOF, Line: 1},
			},
		},
		{
			name:  "keywords and identifiers",
			input: "int char long void if else while for break return sizeof foo _bar9",
			expected: []Token{
				{Type: KW_INT, Lexeme: "int", Line: 1},
				{Type: KW_CHAR, Lexeme: "char", Line: 1},
				{Type: KW_LONG, Lexeme: "long", Line: 1},
				{Type: KW_VOID, Lexeme: "void", Line: 1},
				{Type: KW_IF, Lexeme: "if", Line: 1},
				{Type: KW_ELSE, Lexeme: "else", Line: 1},
				{Type: KW_WHILE, Lexeme: "while", Line: 1},
				{Type: KW_FOR, Lexeme: "for", Line: 1},
				{Type: KW_BREAK, Lexeme: "break", Line: 1},
				{Type: KW_RETURN, Lexeme: "return", Line: 1},
				{Type: KW_SIZEOF, Lexeme: "sizeof", Line: 1},
				{Type: IDENT, Lexeme: "foo", Line: 1},
				{Type: IDENT, Lexeme: "_bar9", Line: 1},
				{Type: EOF, Line: 1},
			},
		},
		{
			name:  "line tracking across newlines",
			input: "a\nb\n\nc",
			expected: []Token{
				{Type: IDENT, Lexeme: "a", Line: 1},
				{Type: IDENT, Lexeme: "b", Line: 2},
				{Type: IDENT, Lexeme: "c", Line: 4},
				{Type: EOF, Line: 4},
			},
		},
		{
			name:  "comments are skipped",
			input: "a // trailing comment\n/* block\ncomment */ b",
			expected: []Token{
				{Type: IDENT, Lexeme: "a", Line: 1},
				{Type: IDENT, Lexeme: "b", Line: 3},
				{Type: EOF, Line: 3},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := lexAll(t, tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("lexAll(%q) = %#v, want %#v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLexCharLiteral(t *testing.T) {
	tests := []struct {
		name  string
		input string
		value string
	}{
		{"plain char", "'a'", "97"},
		{"newline escape", `'\n'`, "10"},
		{"nul escape", `'\0'`, "0"},
		{"tab escape", `'\t'`, "9"},
		{"bell escape", `'\a'`, "7"},
		{"backslash escape", `'\\'`, "92"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, rep := lexAll(t, tt.input)
			if rep.HasErrors() {
				t.Fatalf("unexpected lex errors for %q", tt.input)
			}
			if toks[0].Type != INT_LIT || toks[0].Lexeme != tt.value {
				t.Errorf("got %+v, want INT_LIT %q", toks[0], tt.value)
			}
		})
	}
}

func TestLexStringLiteral(t *testing.T) {
	toks, rep := lexAll(t, `"hello\nworld"`)
	if rep.HasErrors() {
		t.Fatalf("unexpected lex errors")
	}
	if toks[0].Type != STRING_LIT || toks[0].Lexeme != "hello\nworld" {
		t.Errorf("got %+v", toks[0])
	}
}

func TestLexUnterminatedLiteralsReportErrors(t *testing.T) {
	tests := []string{`"unterminated`, `'x`, "/* unterminated"}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, rep := lexAll(t, input)
			if !rep.HasErrors() {
				t.Errorf("expected a lex error for %q", input)
			}
		})
	}
}

func TestLexStrayCharacter(t *testing.T) {
	_, rep := lexAll(t, "@")
	if !rep.HasErrors() {
		t.Error("expected an error for a stray character")
	}
}
