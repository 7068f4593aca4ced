package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a compilation failure.
type ErrorKind int

const (
	// KindSyntax: the token sequence does not match the grammar.
	KindSyntax ErrorKind = iota + 1
	// KindSemantic: the tree is well formed but cannot be compiled,
	// e.g. an unsupported comparison or an unresolvable name.
	KindSemantic
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindSemantic:
		return "semantic"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

var (
	ErrSyntax   = errors.New("syntax error")
	ErrSemantic = errors.New("semantic error")
)

// Error is a compilation failure. Line is 0 when no source position is known.
type Error struct {
	Kind    ErrorKind
	Line    int
	Msg     string
	Snippet string // trimmed source line, if available
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	fmt.Fprintf(&sb, "%s error: %s", e.Kind, e.Msg)
	if e.Snippet != "" {
		fmt.Fprintf(&sb, "\n  |> %s", e.Snippet)
	}
	return sb.String()
}

// Is lets errors.Is match an *Error against ErrSyntax / ErrSemantic.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSyntax:
		return e.Kind == KindSyntax
	case ErrSemantic:
		return e.Kind == KindSemantic
	}
	return false
}

func semanticErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindSemantic, Msg: fmt.Sprintf(format, args...)}
}

// attachSource fills in the snippet of err from src when err is an *Error
// carrying a line number.
func attachSource(err error, src string) error {
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Line <= 0 || cerr.Snippet != "" {
		return err
	}
	lines := strings.Split(src, "\n")
	if cerr.Line-1 < len(lines) {
		cerr.Snippet = strings.TrimSpace(lines[cerr.Line-1])
	}
	return err
}
