package compiler

import (
	"fmt"
	"strings"
)

// CodeGen walks an AST and emits assembly text for the 8-bit accumulator machine.
//
// Register convention: expressions are evaluated into A; B holds the left
// operand of + and - and the right operand of a comparison.
type CodeGen struct {
	syms      *SymbolTable
	out       strings.Builder
	nextLabel int
	comments  bool
}

func newCodeGen(syms *SymbolTable, comments bool) *CodeGen {
	return &CodeGen{syms: syms, comments: comments}
}

// newLabel draws the next number from the compilation-wide label counter.
func (cg *CodeGen) newLabel(prefix string) string {
	l := fmt.Sprintf("%s_%d", prefix, cg.nextLabel)
	cg.nextLabel++
	return l
}

func (cg *CodeGen) line(format string, args ...any) {
	fmt.Fprintf(&cg.out, format+"\n", args...)
}

func (cg *CodeGen) comment(format string, args ...any) {
	if cg.comments {
		cg.line("; "+format, args...)
	}
}

// CollectDeclarations interns every variable reachable from node: declared
// names, assignment targets and names read in expressions, in pre-order.
// It must run over the whole tree before any code is generated.
func CollectDeclarations(node Node, syms *SymbolTable) {
	switch n := node.(type) {
	case *Program:
		for _, s := range n.Stmts {
			CollectDeclarations(s, syms)
		}
	case *Declaration:
		syms.Intern(n.Name)
	case *Assignment:
		// assignment to an undeclared name declares it
		syms.Intern(n.Name)
		CollectDeclarations(n.Value, syms)
	case *Conditional:
		CollectDeclarations(n.Condition, syms)
		CollectDeclarations(n.Then, syms)
	case *BinaryOp:
		CollectDeclarations(n.Left, syms)
		CollectDeclarations(n.Right, syms)
	case *Identifier:
		syms.Intern(n.Name)
	}
}

// genExpr evaluates e into A.
func (cg *CodeGen) genExpr(e Expr) error {
	switch n := e.(type) {
	case *Number:
		cg.line("ldi A %d", n.Value)
		return nil

	case *Identifier:
		addr, err := cg.syms.Lookup(n.Name)
		if err != nil {
			return err
		}
		cg.line("mov A M %d", addr)
		return nil

	case *BinaryOp:
		if n.Op == OpEqual {
			return semanticErrorf("comparison %s can only be used as an if condition", n)
		}
		if err := cg.genExpr(n.Left); err != nil {
			return err
		}
		cg.line("mov B A")
		if err := cg.genExpr(n.Right); err != nil {
			return err
		}
		if n.Op == OpSub {
			cg.line("sub")
		} else {
			cg.line("add")
		}
		return nil
	}
	return semanticErrorf("unsupported expression %s", e)
}

// genCondition emits code that leaves Z describing cond and returns the
// mnemonic of the jump taken when cond is false.
func (cg *CodeGen) genCondition(cond Expr) (string, error) {
	if b, ok := cond.(*BinaryOp); ok && b.Op == OpEqual {
		left, lok := b.Left.(*Identifier)
		right, rok := b.Right.(*Number)
		if !lok || !rok {
			return "", semanticErrorf("unsupported comparison %s: only identifier == number can be compared", b)
		}
		addr, err := cg.syms.Lookup(left.Name)
		if err != nil {
			return "", err
		}
		// The left operand is always an identifier, so one load serves.
		cg.line("mov A M %d", addr)
		cg.line("ldi B %d", right.Value)
		cg.line("cmp")
		return "jnz", nil
	}

	// Any other expression is true when non-zero.
	if err := cg.genExpr(cond); err != nil {
		return "", err
	}
	cg.line("ldi B 0")
	cg.line("cmp")
	return "jz", nil
}

// genDataSection lists every interned variable with its address.
func (cg *CodeGen) genDataSection() {
	cg.line("\n.data")
	for _, sym := range cg.syms.symbols {
		cg.line("%s_addr = %d", sym.Name, sym.Address)
	}
}

// genBlock emits a statement sequence framed by section markers. Only the
// outermost program ends with hlt.
func (cg *CodeGen) genBlock(p *Program, root bool) error {
	cg.line(".text")
	for _, s := range p.Stmts {
		if err := cg.genStmt(s); err != nil {
			return err
		}
	}
	cg.genDataSection()
	if root {
		cg.line("hlt")
	}
	return nil
}

func (cg *CodeGen) genStmt(s Stmt) error {
	switch n := s.(type) {

	case *Declaration:
		// storage was assigned during declaration collection

	case *Assignment:
		cg.comment("%s = %s", n.Name, n.Value)
		if err := cg.genExpr(n.Value); err != nil {
			return err
		}
		addr, err := cg.syms.Lookup(n.Name)
		if err != nil {
			return err
		}
		cg.line("mov M A %d", addr)

	case *Conditional:
		cg.comment("if %s {", n.Condition)
		jump, err := cg.genCondition(n.Condition)
		if err != nil {
			return err
		}

		elseLabel := cg.newLabel("else")
		endLabel := cg.newLabel("end")

		cg.line("%s %s", jump, elseLabel)
		if err := cg.genBlock(n.Then, false); err != nil {
			return err
		}
		cg.line("jmp %s", endLabel)
		cg.line("%s:", elseLabel)
		cg.line("%s:", endLabel)
		cg.comment("}")

	case *Program:
		return cg.genBlock(n, false)

	default:
		return semanticErrorf("unsupported statement %s", s)
	}
	return nil
}

// Generate emits assembly for prog. Declarations are collected into syms
// first, so syms must be fresh for every compilation.
func Generate(prog *Program, syms *SymbolTable) (string, error) {
	cg := newCodeGen(syms, true)
	return cg.generate(prog)
}

func (cg *CodeGen) generate(prog *Program) (string, error) {
	CollectDeclarations(prog, cg.syms)
	return cg.emit(prog)
}

// emit is the second phase: every name must already be interned.
func (cg *CodeGen) emit(prog *Program) (string, error) {
	if err := cg.genBlock(prog, true); err != nil {
		return "", err
	}
	return cg.out.String(), nil
}
