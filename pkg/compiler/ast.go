package compiler

import "fmt"

// Node is implemented by every AST node.
type Node interface {
	String() string
}

//  Expression nodes

// Expr is implemented by every node that produces a value.
// genExpr always leaves the result in the accumulator A.
type Expr interface {
	Node
	exprNode()
}

// BinaryOperator is the operator of a BinaryOp node.
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpEqual
)

func (op BinaryOperator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpEqual:
		return "=="
	}
	return fmt.Sprintf("BinaryOperator(%d)", int(op))
}

// Number is an integer literal.
//
//	x = 10;
//	    ^^  Number{Value: 10}
type Number struct {
	Value int
}

func (*Number) exprNode()        {}
func (n *Number) String() string { return fmt.Sprintf("%d", n.Value) }

// Identifier is a read of a named variable.
type Identifier struct {
	Name string
}

func (*Identifier) exprNode()        {}
func (i *Identifier) String() string { return i.Name }

// BinaryOp represents Left Op Right.
//
//	a + b - c   parses as   BinaryOp{Sub, BinaryOp{Add, a, b}, c}
type BinaryOp struct {
	Op    BinaryOperator
	Left  Expr
	Right Expr
}

func (*BinaryOp) exprNode() {}
func (b *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	Node
	stmtNode()
}

// Program is an ordered statement sequence: the whole source file, or the
// body of a conditional.
type Program struct {
	Stmts []Stmt
}

func (*Program) stmtNode() {}
func (p *Program) String() string {
	return fmt.Sprintf("Program(len=%d)", len(p.Stmts))
}

// Declaration represents  int name;
type Declaration struct {
	Name string
}

func (*Declaration) stmtNode() {}
func (d *Declaration) String() string {
	return fmt.Sprintf("Declaration(int %s)", d.Name)
}

// Assignment represents  name = value;
type Assignment struct {
	Name  string
	Value Expr
}

func (*Assignment) stmtNode() {}
func (a *Assignment) String() string {
	return fmt.Sprintf("Assignment(%s = %s)", a.Name, a.Value)
}

// Conditional represents  if (cond) { then }
type Conditional struct {
	Condition Expr
	Then      *Program
}

func (*Conditional) stmtNode() {}
func (c *Conditional) String() string {
	return fmt.Sprintf("Conditional(if %s then %s)", c.Condition, c.Then)
}
