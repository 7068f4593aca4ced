package cpu

// State is a JSON-serialisable snapshot of the machine, excluding the program.
type State struct {
	A      byte             `json:"a"`
	B      byte             `json:"b"`
	PC     uint16           `json:"pc"`
	Z      bool             `json:"z"`
	C      bool             `json:"c"`
	Halted bool             `json:"halted"`
	Steps  int              `json:"steps"`
	Memory [MemorySize]byte `json:"-"`
}

// State captures the current registers, flags and data memory.
func (c *CPU) State() State {
	return State{
		A:      c.A,
		B:      c.B,
		PC:     c.PC,
		Z:      c.Z,
		C:      c.C,
		Halted: c.Halted,
		Steps:  c.Steps,
		Memory: c.Memory,
	}
}

// Restore rewinds the machine to a snapshot taken with State.
func (c *CPU) Restore(s State) {
	c.A = s.A
	c.B = s.B
	c.PC = s.PC
	c.Z = s.Z
	c.C = s.C
	c.Halted = s.Halted
	c.Steps = s.Steps
	c.Memory = s.Memory
}

// Peek reads one byte of data memory; ok is false outside 0..255.
func (s State) Peek(addr int) (v byte, ok bool) {
	if addr < 0 || addr >= MemorySize {
		return 0, false
	}
	return s.Memory[addr], true
}
