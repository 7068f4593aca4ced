package compiler

import (
	"fmt"
	"strings"
)

// DefaultBaseAddress is where the first variable is placed in data memory.
const DefaultBaseAddress = 100

// Symbol is a variable bound to its data memory address.
type Symbol struct {
	Name    string `json:"name"`
	Address int    `json:"address"`
}

// SymbolTable maps variable names to data memory addresses.
// Addresses are handed out sequentially from the base in the order names are
// first interned and never change afterwards.
type SymbolTable struct {
	base    int
	index   map[string]int // name -> position in symbols
	symbols []Symbol
}

// NewSymbolTable returns an empty table whose first address is base.
func NewSymbolTable(base int) *SymbolTable {
	return &SymbolTable{
		base:  base,
		index: make(map[string]int),
	}
}

// Intern returns the address of name, allocating the next free one if the
// name has not been seen before.
func (s *SymbolTable) Intern(name string) int {
	if i, ok := s.index[name]; ok {
		return s.symbols[i].Address
	}
	sym := Symbol{Name: name, Address: s.base + len(s.symbols)}
	s.index[name] = len(s.symbols)
	s.symbols = append(s.symbols, sym)
	return sym.Address
}

// Lookup returns the address of a previously interned name.
func (s *SymbolTable) Lookup(name string) (int, error) {
	i, ok := s.index[name]
	if !ok {
		return 0, semanticErrorf("undefined variable %q", name)
	}
	return s.symbols[i].Address, nil
}

// Symbols returns the entries in interning order.
func (s *SymbolTable) Symbols() []Symbol {
	out := make([]Symbol, len(s.symbols))
	copy(out, s.symbols)
	return out
}

func (s *SymbolTable) Len() int { return len(s.symbols) }

func (s *SymbolTable) Base() int { return s.base }

// String returns a dump of the table in address order.
func (s *SymbolTable) String() string {
	if len(s.symbols) == 0 {
		return "Symbols: (empty)\n"
	}
	var sb strings.Builder
	sb.WriteString("Symbols:\n")
	for _, sym := range s.symbols {
		fmt.Fprintf(&sb, "  %-20s  Address: %d\n", sym.Name, sym.Address)
	}
	return sb.String()
}
