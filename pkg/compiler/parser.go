package compiler

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parser pulls tokens from a Lexer one at a time and builds an AST.
//
// Grammar:
//
//	program    = statement* EOF
//	statement  = declaration | assignment | conditional
//	declaration = "int" IDENTIFIER ";"
//	assignment = IDENTIFIER "=" comparison ";"
//	conditional = "if" "(" comparison ")" "{" statement* "}"
//	comparison = additive ("==" additive)?
//	additive   = term (("+" | "-") term)*
//	term       = NUMBER | IDENTIFIER
//
// The only state besides the lexer is a single buffered token.
type Parser struct {
	lex     *Lexer
	cur     Token
	pending bool // cur holds a token that has not been consumed yet
}

func NewParser(lex *Lexer) *Parser {
	return &Parser{lex: lex}
}

// Parse reads a whole program from r.
func Parse(r io.Reader) (*Program, error) {
	return NewParser(NewLexer(r)).ParseProgram()
}

// ParseString parses src; syntax errors carry the offending source line.
func ParseString(src string) (*Program, error) {
	prog, err := Parse(strings.NewReader(src))
	if err != nil {
		return nil, attachSource(err, src)
	}
	return prog, nil
}

func (p *Parser) errorf(tok Token, format string, args ...any) error {
	return &Error{Kind: KindSyntax, Line: tok.Line, Msg: fmt.Sprintf(format, args...)}
}

// unexpected reports tok where something else was required.
func (p *Parser) unexpected(tok Token, want string) error {
	switch tok.Type {
	case UNKNOWN:
		return p.errorf(tok, "unexpected character %q, expected %s", tok.Lexeme, want)
	case EOF:
		return p.errorf(tok, "unexpected end of input, expected %s", want)
	}
	return p.errorf(tok, "expected %s, got %s (%q)", want, tok.Type, tok.Lexeme)
}

// peek returns the current token without consuming it.
func (p *Parser) peek() (Token, error) {
	if !p.pending {
		tok, err := p.lex.Next()
		if err != nil {
			return Token{}, err
		}
		p.cur = tok
		p.pending = true
	}
	return p.cur, nil
}

// advance consumes and returns the current token.
func (p *Parser) advance() (Token, error) {
	tok, err := p.peek()
	if err != nil {
		return Token{}, err
	}
	p.pending = false
	return tok, nil
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok, err := p.advance()
	if err != nil {
		return Token{}, err
	}
	if tok.Type != tt {
		return tok, p.unexpected(tok, tt.String())
	}
	return tok, nil
}

// ParseProgram parses statements until end of input.
func (p *Parser) ParseProgram() (*Program, error) {
	stmts, err := p.parseStatements(EOF)
	if err != nil {
		return nil, err
	}
	return &Program{Stmts: stmts}, nil
}

// parseStatements collects statements until the end token, which is left
// unconsumed. Blocks and the top level share this routine.
func (p *Parser) parseStatements(end TokenType) ([]Stmt, error) {
	stmts := make([]Stmt, 0, 16)
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Type == end {
			return stmts, nil
		}
		if tok.Type == EOF {
			return nil, p.errorf(tok, "unexpected end of input, expected %s to close block", end)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
}

// parseStatement dispatches on the current token. End of input yields no
// statement and no error.
func (p *Parser) parseStatement() (Stmt, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch tok.Type {
	case INT:
		return p.parseDeclaration()
	case IDENTIFIER:
		return p.parseAssignment()
	case IF:
		return p.parseConditional()
	case EOF:
		return nil, nil
	}
	if tok.Type == UNKNOWN {
		return nil, p.errorf(tok, "unexpected character %q at start of statement", tok.Lexeme)
	}
	return nil, p.errorf(tok, "unexpected token %s (%q) at start of statement", tok.Type, tok.Lexeme)
}

func (p *Parser) parseDeclaration() (Stmt, error) {
	if _, err := p.expect(INT); err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &Declaration{Name: name.Lexeme}, nil
}

func (p *Parser) parseAssignment() (Stmt, error) {
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &Assignment{Name: name.Lexeme, Value: value}, nil
}

func (p *Parser) parseConditional() (Stmt, error) {
	if _, err := p.expect(IF); err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	stmts, err := p.parseStatements(RBRACE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return &Conditional{Condition: cond, Then: &Program{Stmts: stmts}}, nil
}

// parseComparison handles a single, non-chainable ==.
func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Type != EQUALS {
		return left, nil
	}
	p.pending = false
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if next, err := p.peek(); err != nil {
		return nil, err
	} else if next.Type == EQUALS {
		return nil, p.errorf(next, "comparisons cannot be chained")
	}
	return &BinaryOp{Op: OpEqual, Left: left, Right: right}, nil
}

// parseAdditive handles + and -, left-associative.
func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		var op BinaryOperator
		switch tok.Type {
		case PLUS:
			op = OpAdd
		case MINUS:
			op = OpSub
		default:
			return expr, nil
		}
		p.pending = false
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOp{Op: op, Left: expr, Right: right}
	}
}

func (p *Parser) parseTerm() (Expr, error) {
	tok, err := p.advance()
	if err != nil {
		return nil, err
	}
	switch tok.Type {
	case NUMBER:
		v, err := strconv.Atoi(tok.Lexeme)
		if err != nil {
			return nil, p.errorf(tok, "number %s is out of range", tok.Lexeme)
		}
		return &Number{Value: v}, nil
	case IDENTIFIER:
		return &Identifier{Name: tok.Lexeme}, nil
	}
	return nil, p.unexpected(tok, "number or identifier")
}
