package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable name
	NUMBER     // unsigned decimal literal

	// Keywords
	INT // "int"
	IF  // "if"

	// Operators
	ASSIGN // =
	PLUS   // +
	MINUS  // -
	EQUALS // ==

	// Paired delimiters
	LBRACE // {
	RBRACE // }
	LPAREN // (
	RPAREN // )

	SEMICOLON // ;

	UNKNOWN // any character the language does not use
)

// MaxLexeme bounds the text kept for identifiers and numbers.
// Longer runs are consumed in full but truncated silently.
const MaxLexeme = 99

var tokenNames = [...]string{
	EOF:        "EOF",
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	INT:        "KEYWORD_INT",
	IF:         "KEYWORD_IF",
	ASSIGN:     "ASSIGN",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	EQUALS:     "EQUAL",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	SEMICOLON:  "SEMICOLON",
	UNKNOWN:    "UNKNOWN",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the source text that was matched, truncated to MaxLexeme
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-12s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}
