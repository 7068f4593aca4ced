package compiler

import (
	"strings"
	"testing"
)

func TestFprint(t *testing.T) {
	prog, err := ParseString("int x; x = x + 1; if (x == 2) { y = 3; }")
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := Fprint(&sb, prog); err != nil {
		t.Fatal(err)
	}

	want := `PROGRAM (3 statements)
  DECLARATION: x
  ASSIGNMENT: x =
    BINARY: +
      IDENTIFIER: x
      NUMBER: 1
  IF
    BINARY: ==
      IDENTIFIER: x
      NUMBER: 2
    PROGRAM (1 statements)
      ASSIGNMENT: y =
        NUMBER: 3
`
	if sb.String() != want {
		t.Errorf("Fprint =\n%s\nwant\n%s", sb.String(), want)
	}

	// printing must not disturb code generation
	if _, err := Generate(prog, NewSymbolTable(DefaultBaseAddress)); err != nil {
		t.Errorf("Generate after Fprint: %v", err)
	}
}
