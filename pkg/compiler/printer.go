package compiler

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented outline of the tree rooted at node to w.
// It only reads the tree.
func Fprint(w io.Writer, node Node) error {
	var sb strings.Builder
	printNode(&sb, node, 0)
	_, err := io.WriteString(w, sb.String())
	return err
}

func printNode(sb *strings.Builder, node Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := node.(type) {
	case *Program:
		fmt.Fprintf(sb, "%sPROGRAM (%d statements)\n", indent, len(n.Stmts))
		for _, s := range n.Stmts {
			printNode(sb, s, depth+1)
		}
	case *Declaration:
		fmt.Fprintf(sb, "%sDECLARATION: %s\n", indent, n.Name)
	case *Assignment:
		fmt.Fprintf(sb, "%sASSIGNMENT: %s =\n", indent, n.Name)
		printNode(sb, n.Value, depth+1)
	case *BinaryOp:
		fmt.Fprintf(sb, "%sBINARY: %s\n", indent, n.Op)
		printNode(sb, n.Left, depth+1)
		printNode(sb, n.Right, depth+1)
	case *Number:
		fmt.Fprintf(sb, "%sNUMBER: %d\n", indent, n.Value)
	case *Identifier:
		fmt.Fprintf(sb, "%sIDENTIFIER: %s\n", indent, n.Name)
	case *Conditional:
		fmt.Fprintf(sb, "%sIF\n", indent)
		printNode(sb, n.Condition, depth+1)
		printNode(sb, n.Then, depth+1)
	}
}
