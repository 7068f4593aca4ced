package cpu

import (
	"errors"
	"fmt"
)

// Opcodes. Every instruction is one opcode byte followed by its operand:
// none, one byte (imm8 / addr8) or two little-endian bytes (addr16).
const (
	OpHLT   byte = 0x00
	OpNOP   byte = 0x01
	OpLDIA  byte = 0x02 // ldi A imm8
	OpLDIB  byte = 0x03 // ldi B imm8
	OpLDA   byte = 0x04 // mov A M addr8
	OpSTA   byte = 0x05 // mov M A addr8
	OpLDB   byte = 0x06 // mov B M addr8
	OpSTB   byte = 0x07 // mov M B addr8
	OpMOVBA byte = 0x08 // mov B A   (B <- A)
	OpMOVAB byte = 0x09 // mov A B   (A <- B)
	OpADD   byte = 0x10 // A <- B + A
	OpSUB   byte = 0x11 // A <- B - A
	OpCMP   byte = 0x12 // Z <- A == B, C <- A < B
	OpJMP   byte = 0x20
	OpJZ    byte = 0x21
	OpJNZ   byte = 0x22
	OpJC    byte = 0x23
	OpJNC   byte = 0x24
)

// MemorySize is the size of data memory in bytes.
const MemorySize = 256

// MaxProgramSize is the size of program memory in bytes.
const MaxProgramSize = 1 << 16

var (
	ErrIllegalInstruction = errors.New("illegal instruction")
	ErrProgramOverrun     = errors.New("program counter ran past end of program")
	ErrStepLimit          = errors.New("step limit reached before hlt")
	ErrProgramTooLarge    = errors.New("program too large for program memory")
)

var operandWidths = map[byte]int{
	OpHLT: 0, OpNOP: 0,
	OpLDIA: 1, OpLDIB: 1,
	OpLDA: 1, OpSTA: 1, OpLDB: 1, OpSTB: 1,
	OpMOVBA: 0, OpMOVAB: 0,
	OpADD: 0, OpSUB: 0, OpCMP: 0,
	OpJMP: 2, OpJZ: 2, OpJNZ: 2, OpJC: 2, OpJNC: 2,
}

// InstructionLength returns the encoded size in bytes of an instruction.
func InstructionLength(opcode byte) (int, bool) {
	w, ok := operandWidths[opcode]
	if !ok {
		return 0, false
	}
	return 1 + w, true
}

// CPU is the 8-bit accumulator machine. Program and data live in separate
// memories: code is read-only and addressed by the 16-bit PC, variables live
// in 256 bytes of data memory.
type CPU struct {
	A, B byte
	PC   uint16

	Z bool
	C bool

	Halted bool
	Steps  int

	Program []byte
	Memory  [MemorySize]byte
}

func NewCPU() *CPU {
	return &CPU{}
}

// Load installs program and resets registers, flags and data memory.
func (c *CPU) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes > %d bytes", ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	c.Program = append([]byte(nil), program...)
	c.Reset()
	return nil
}

// Reset returns the machine to its power-on state, keeping the program.
func (c *CPU) Reset() {
	c.A, c.B = 0, 0
	c.PC = 0
	c.Z, c.C = false, false
	c.Halted = false
	c.Steps = 0
	c.Memory = [MemorySize]byte{}
}

func (c *CPU) fetch() (byte, error) {
	if int(c.PC) >= len(c.Program) {
		return 0, fmt.Errorf("%w at 0x%04X", ErrProgramOverrun, c.PC)
	}
	b := c.Program[c.PC]
	c.PC++
	return b, nil
}

func (c *CPU) fault(err error) error {
	c.Halted = true
	return err
}

// Step executes one instruction. Faults halt the machine and are returned.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}

	at := c.PC
	opcode, err := c.fetch()
	if err != nil {
		return c.fault(err)
	}
	width, ok := operandWidths[opcode]
	if !ok {
		return c.fault(fmt.Errorf("%w 0x%02X at 0x%04X", ErrIllegalInstruction, opcode, at))
	}

	var operand uint16
	for i := 0; i < width; i++ {
		b, err := c.fetch()
		if err != nil {
			return c.fault(err)
		}
		operand |= uint16(b) << (8 * i)
	}
	c.Steps++

	switch opcode {
	case OpHLT:
		c.Halted = true
	case OpNOP:
	case OpLDIA:
		c.A = byte(operand)
	case OpLDIB:
		c.B = byte(operand)
	case OpLDA:
		c.A = c.Memory[byte(operand)]
	case OpSTA:
		c.Memory[byte(operand)] = c.A
	case OpLDB:
		c.B = c.Memory[byte(operand)]
	case OpSTB:
		c.Memory[byte(operand)] = c.B
	case OpMOVBA:
		c.B = c.A
	case OpMOVAB:
		c.A = c.B
	case OpADD:
		sum := uint16(c.B) + uint16(c.A)
		c.A = byte(sum)
		c.C = sum > 0xFF
		c.Z = c.A == 0
	case OpSUB:
		c.C = c.B < c.A // borrow
		c.A = c.B - c.A
		c.Z = c.A == 0
	case OpCMP:
		c.Z = c.A == c.B
		c.C = c.A < c.B
	case OpJMP:
		c.PC = operand
	case OpJZ:
		if c.Z {
			c.PC = operand
		}
	case OpJNZ:
		if !c.Z {
			c.PC = operand
		}
	case OpJC:
		if c.C {
			c.PC = operand
		}
	case OpJNC:
		if !c.C {
			c.PC = operand
		}
	}
	return nil
}

// Run steps until hlt. A positive limit bounds the number of instructions.
func (c *CPU) Run(limit int) error {
	for !c.Halted {
		if limit > 0 && c.Steps >= limit {
			return fmt.Errorf("%w (%d steps)", ErrStepLimit, limit)
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}
