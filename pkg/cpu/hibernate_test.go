package cpu

import (
	"path/filepath"
	"testing"
)

func TestCPU_HibernateAndResume(t *testing.T) {
	// ldi A 1; mov B A; add; mov M A 7; jmp 2
	program := []byte{OpLDIA, 1, OpMOVBA, OpADD, OpSTA, 7, OpJMP, 2, 0}

	c1 := NewCPU()
	if err := c1.Load(program); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 6; i++ {
		if err := c1.Step(); err != nil {
			t.Fatal(err)
		}
	}

	data, err := c1.HibernateToBytes()
	if err != nil {
		t.Fatalf("HibernateToBytes: %v", err)
	}

	c2 := NewCPU()
	if err := c2.RestoreFromBytes(data); err != nil {
		t.Fatalf("RestoreFromBytes: %v", err)
	}
	if c2.State() != c1.State() {
		t.Fatalf("state mismatch:\n got %+v\nwant %+v", c2.State(), c1.State())
	}
	if string(c2.Program) != string(c1.Program) {
		t.Fatalf("program mismatch")
	}

	// Both machines must continue identically.
	for i := 0; i < 8; i++ {
		if err := c1.Step(); err != nil {
			t.Fatal(err)
		}
		if err := c2.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if c1.State() != c2.State() {
		t.Errorf("diverged after resume:\n c1 %+v\n c2 %+v", c1.State(), c2.State())
	}
}

func TestCPU_HibernateFile(t *testing.T) {
	c1 := NewCPU()
	if err := c1.Load([]byte{OpLDIA, 200, OpSTA, 255, OpHLT}); err != nil {
		t.Fatal(err)
	}
	if err := c1.Run(0); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "snap.zip")
	if err := c1.HibernateToFile(path); err != nil {
		t.Fatalf("HibernateToFile: %v", err)
	}

	c2 := NewCPU()
	if err := c2.RestoreFromFile(path); err != nil {
		t.Fatalf("RestoreFromFile: %v", err)
	}
	if c2.Memory[255] != 200 || !c2.Halted {
		t.Errorf("restored mem[255]=%d halted=%v", c2.Memory[255], c2.Halted)
	}
}

func TestCPU_RestoreRejectsGarbage(t *testing.T) {
	c := NewCPU()
	if err := c.RestoreFromBytes([]byte("not a zip")); err == nil {
		t.Error("expected error")
	}
}

func TestStatePeek(t *testing.T) {
	c := NewCPU()
	c.Memory[100] = 8
	s := c.State()
	if v, ok := s.Peek(100); !ok || v != 8 {
		t.Errorf("Peek(100) = %d, %v", v, ok)
	}
	if _, ok := s.Peek(256); ok {
		t.Error("Peek(256) should fail")
	}
	if _, ok := s.Peek(-1); ok {
		t.Error("Peek(-1) should fail")
	}
}
