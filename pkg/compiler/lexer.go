package compiler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

var keywords = map[string]TokenType{
	"int": INT,
	"if":  IF,
}

// Lexer produces tokens on demand from a character stream.
// It reads one rune at a time and never needs more than one rune of pushback.
type Lexer struct {
	r    *bufio.Reader
	line int // current 1-based source line
}

// NewLexer returns a Lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r), line: 1}
}

// read returns the next rune, or ok=false at end of input.
func (l *Lexer) read() (r rune, ok bool, err error) {
	r, _, err = l.r.ReadRune()
	if errors.Is(err, io.EOF) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read source: %w", err)
	}
	if r == '\n' {
		l.line++
	}
	return r, true, nil
}

// unread pushes the last rune back onto the stream.
func (l *Lexer) unread(r rune) {
	if r == '\n' {
		l.line--
	}
	_ = l.r.UnreadRune()
}

// scanRun collects first plus every following rune accepted by keep.
func (l *Lexer) scanRun(first rune, keep func(rune) bool) (string, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		r, ok, err := l.read()
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
		if !keep(r) {
			l.unread(r)
			break
		}
		if sb.Len() < MaxLexeme {
			sb.WriteRune(r)
		}
	}
	return sb.String(), nil
}

// skipLineComment discards everything up to and including the next newline.
// The opening "//" must already have been consumed.
func (l *Lexer) skipLineComment() error {
	for {
		r, ok, err := l.read()
		if err != nil {
			return err
		}
		if !ok || r == '\n' {
			return nil
		}
	}
}

func isLetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentRune(r rune) bool { return isLetter(r) || isDigit(r) }

// Next skips whitespace and comments and returns the next Token.
// Unrecognised characters come back as UNKNOWN tokens; the only error is a
// failure of the underlying reader.
func (l *Lexer) Next() (Token, error) {
	for {
		ch, ok, err := l.read()
		if err != nil {
			return Token{}, err
		}
		if !ok {
			return Token{Type: EOF, Lexeme: "", Line: l.line}, nil
		}
		if unicode.IsSpace(ch) {
			continue
		}

		line := l.line

		if isLetter(ch) {
			lexeme, err := l.scanRun(ch, isIdentRune)
			if err != nil {
				return Token{}, err
			}
			tt := IDENTIFIER
			if kw, ok := keywords[lexeme]; ok {
				tt = kw
			}
			return Token{Type: tt, Lexeme: lexeme, Line: line}, nil
		}

		if isDigit(ch) {
			lexeme, err := l.scanRun(ch, isDigit)
			if err != nil {
				return Token{}, err
			}
			return Token{Type: NUMBER, Lexeme: lexeme, Line: line}, nil
		}

		switch ch {
		case '{':
			return Token{LBRACE, "{", line}, nil
		case '}':
			return Token{RBRACE, "}", line}, nil
		case '(':
			return Token{LPAREN, "(", line}, nil
		case ')':
			return Token{RPAREN, ")", line}, nil
		case ';':
			return Token{SEMICOLON, ";", line}, nil
		case '+':
			return Token{PLUS, "+", line}, nil
		case '-':
			return Token{MINUS, "-", line}, nil
		case '=':
			next, ok, err := l.read()
			if err != nil {
				return Token{}, err
			}
			if ok && next == '=' { // lookahead: distinguish = vs ==
				return Token{EQUALS, "==", line}, nil
			}
			if ok {
				l.unread(next)
			}
			return Token{ASSIGN, "=", line}, nil
		case '/':
			next, ok, err := l.read()
			if err != nil {
				return Token{}, err
			}
			if ok && next == '/' {
				if err := l.skipLineComment(); err != nil {
					return Token{}, err
				}
				continue
			}
			if ok {
				l.unread(next)
			}
			return Token{UNKNOWN, "/", line}, nil
		default:
			return Token{UNKNOWN, string(ch), line}, nil
		}
	}
}

// Tokenize lexes all of r and returns every token including the final EOF.
func Tokenize(r io.Reader) ([]Token, error) {
	l := NewLexer(r)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

// Lex tokenises src.
func Lex(src string) []Token {
	// A strings.Reader never fails, so the error is always nil.
	tokens, _ := Tokenize(strings.NewReader(src))
	return tokens
}
