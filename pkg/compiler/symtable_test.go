package compiler

import (
	"errors"
	"fmt"
	"testing"
)

func TestSymbolTable(t *testing.T) {
	t.Run("SequentialAddresses", func(t *testing.T) {
		s := NewSymbolTable(DefaultBaseAddress)
		for i, name := range []string{"x", "y", "z"} {
			if got := s.Intern(name); got != DefaultBaseAddress+i {
				t.Errorf("Intern(%q) = %d; want %d", name, got, DefaultBaseAddress+i)
			}
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		s := NewSymbolTable(100)
		first := s.Intern("x")
		s.Intern("y")
		if again := s.Intern("x"); again != first {
			t.Errorf("second Intern(x) = %d; want %d", again, first)
		}
		if s.Len() != 2 {
			t.Errorf("Len() = %d; want 2", s.Len())
		}
	})

	t.Run("AddressBounds", func(t *testing.T) {
		s := NewSymbolTable(40)
		for i := 0; i < 10; i++ {
			name := fmt.Sprintf("v%d", i%4)
			addr := s.Intern(name)
			if addr <= s.Base()-1 || addr >= s.Base()+s.Len() {
				t.Errorf("Intern(%q) = %d outside [%d, %d)", name, addr, s.Base(), s.Base()+s.Len())
			}
		}
	})

	t.Run("Lookup", func(t *testing.T) {
		s := NewSymbolTable(100)
		s.Intern("a")
		if addr, err := s.Lookup("a"); err != nil || addr != 100 {
			t.Errorf("Lookup(a) = %d, %v", addr, err)
		}
		_, err := s.Lookup("missing")
		if !errors.Is(err, ErrSemantic) {
			t.Errorf("Lookup(missing) error = %v; want semantic error", err)
		}
	})

	t.Run("NoCapacityLimit", func(t *testing.T) {
		s := NewSymbolTable(0)
		for i := 0; i < 1000; i++ {
			s.Intern(fmt.Sprintf("v%d", i))
		}
		if addr, _ := s.Lookup("v999"); addr != 999 {
			t.Errorf("v999 at %d; want 999", addr)
		}
	})

	t.Run("SymbolsIsACopy", func(t *testing.T) {
		s := NewSymbolTable(100)
		s.Intern("a")
		syms := s.Symbols()
		syms[0].Address = 7
		if addr, _ := s.Lookup("a"); addr != 100 {
			t.Errorf("mutating Symbols() changed the table")
		}
	})

	t.Run("String", func(t *testing.T) {
		s := NewSymbolTable(100)
		if got := s.String(); got != "Symbols: (empty)\n" {
			t.Errorf("empty String() = %q", got)
		}
		s.Intern("x")
		want := "Symbols:\n  x                     Address: 100\n"
		if got := s.String(); got != want {
			t.Errorf("String() = %q; want %q", got, want)
		}
	})
}
