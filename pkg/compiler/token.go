package compiler

import "fmt"

// TokenType identifies the category of a lexed token. The set is exactly
// spec.md §6's external interface: identifiers, integer/character/string
// literals, the eleven Simple C keywords, the punctuators Simple C's
// grammar needs, and end-of-input.
type TokenType int

const (
	EOF TokenType = iota

	IDENT
	INT_LIT
	STRING_LIT

	// Keywords
	KW_CHAR
	KW_INT
	KW_LONG
	KW_VOID
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_FOR
	KW_BREAK
	KW_RETURN
	KW_SIZEOF

	// Delimiters
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	SEMI

	// Operators
	ASSIGN
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	BANG
	AMP
	LT
	GT
	LE
	GE
	EQ
	NE
	AND_AND
	OR_OR
	ELLIPSIS
)

var keywords = map[string]TokenType{
	"char":   KW_CHAR,
	"int":    KW_INT,
	"long":   KW_LONG,
	"void":   KW_VOID,
	"if":     KW_IF,
	"else":   KW_ELSE,
	"while":  KW_WHILE,
	"for":    KW_FOR,
	"break":  KW_BREAK,
	"return": KW_RETURN,
	"sizeof": KW_SIZEOF,
}

var tokenNames = map[TokenType]string{
	EOF:        "end of file",
	IDENT:      "identifier",
	INT_LIT:    "integer literal",
	STRING_LIT: "string literal",
	KW_CHAR:    "char", KW_INT: "int", KW_LONG: "long", KW_VOID: "void",
	KW_IF: "if", KW_ELSE: "else", KW_WHILE: "while", KW_FOR: "for",
	KW_BREAK: "break", KW_RETURN: "return", KW_SIZEOF: "sizeof",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}",
	LBRACKET: "[", RBRACKET: "]", COMMA: ",", SEMI: ";",
	ASSIGN: "=", PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	BANG: "!", AMP: "&", LT: "<", GT: ">", LE: "<=", GE: ">=", EQ: "==", NE: "!=",
	AND_AND: "&&", OR_OR: "||", ELLIPSIS: "...",
}

func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit: a tag, the exact source text it matched,
// and the source line it started on. This is the token stream shape
// spec.md §6 asks the (external) lexer to provide the parser; the lexer in
// this repository is a real, if simple, collaborator rather than a stub.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
}

func (t Token) String() string {
	return fmt.Sprintf("%-14s %-12q line %d", t.Type, t.Lexeme, t.Line)
}
