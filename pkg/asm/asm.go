package asm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"slc/pkg/cpu"
)

// ErrAssembly is wrapped by every error the assembler returns.
var ErrAssembly = errors.New("assembly failed")

var simpleOps = map[string]byte{
	"HLT": cpu.OpHLT,
	"NOP": cpu.OpNOP,
	"ADD": cpu.OpADD,
	"SUB": cpu.OpSUB,
	"CMP": cpu.OpCMP,
}

var jumpOps = map[string]byte{
	"JMP": cpu.OpJMP,
	"JZ":  cpu.OpJZ,
	"JNZ": cpu.OpJNZ,
	"JC":  cpu.OpJC,
	"JNC": cpu.OpJNC,
}

// movForms maps the register operands of mov to an opcode; forms touching
// memory take a trailing address operand.
var movForms = map[string]byte{
	"A M": cpu.OpLDA,
	"M A": cpu.OpSTA,
	"B M": cpu.OpLDB,
	"M B": cpu.OpSTB,
	"B A": cpu.OpMOVBA,
	"A B": cpu.OpMOVAB,
}

var ldiForms = map[string]byte{
	"A": cpu.OpLDIA,
	"B": cpu.OpLDIB,
}

// Image is an assembled program.
type Image struct {
	Code []byte
	// Symbols holds every label and equate by its source spelling.
	Symbols map[string]int
	// SourceMap maps a code address to the 1-based source line it came from.
	SourceMap map[uint16]int
}

type symbol struct {
	name    string
	value   int
	isLabel bool
}

type Assembler struct {
	symbols map[string]symbol // case-sensitive, unlike mnemonics and registers
}

type parsedLine struct {
	lineNo   int
	labels   []string
	equate   string // name of a "name = value" definition
	mnemonic string
	operands []string
}

// instruction is a parsed line resolved to an opcode.
type instruction struct {
	opcode  byte
	operand string // empty when the opcode takes none
}

func NewAssembler() *Assembler {
	return &Assembler{
		symbols: make(map[string]symbol),
	}
}

func Assemble(code string) (*Image, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) (*Image, error) {
	lines := strings.Split(code, "\n")

	parsed := make([]parsedLine, 0, len(lines))
	for i, raw := range lines {
		p, err := parseLine(raw, i+1)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAssembly, err)
		}
		parsed = append(parsed, p)
	}

	if err := a.pass1(parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssembly, err)
	}
	img, err := a.pass2(parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssembly, err)
	}
	return img, nil
}

func (a *Assembler) define(name string, value int, isLabel bool, lineNo int) error {
	if prev, exists := a.symbols[name]; exists {
		if isLabel || prev.isLabel {
			return fmt.Errorf("duplicate symbol '%s' on line %d", name, lineNo)
		}
		if prev.value != value {
			return fmt.Errorf("conflicting definition of '%s' on line %d: %d, previously %d", name, lineNo, value, prev.value)
		}
		return nil
	}
	a.symbols[name] = symbol{name: name, value: value, isLabel: isLabel}
	return nil
}

// pass1 assigns addresses to labels and records equates.
func (a *Assembler) pass1(lines []parsedLine) error {
	var address int

	for _, p := range lines {
		for _, lbl := range p.labels {
			if err := a.define(lbl, address, true, p.lineNo); err != nil {
				return err
			}
		}

		if p.equate != "" {
			value, err := a.parseValue(p.operands[0], p.lineNo)
			if err != nil {
				return err
			}
			if err := a.define(p.equate, value, false, p.lineNo); err != nil {
				return err
			}
			continue
		}

		if p.mnemonic == "" || isSectionMarker(p.mnemonic) {
			continue
		}

		ins, err := resolve(p)
		if err != nil {
			return err
		}
		length, _ := cpu.InstructionLength(ins.opcode)
		if address+length > cpu.MaxProgramSize {
			return fmt.Errorf("program too large near line %d", p.lineNo)
		}
		address += length
	}

	return nil
}

func (a *Assembler) pass2(lines []parsedLine) (*Image, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for _, p := range lines {
		if p.equate != "" || p.mnemonic == "" || isSectionMarker(p.mnemonic) {
			continue
		}

		ins, err := resolve(p)
		if err != nil {
			return nil, err
		}

		sourceMap[uint16(len(program))] = p.lineNo
		program = append(program, ins.opcode)

		width, _ := cpu.InstructionLength(ins.opcode)
		switch width - 1 {
		case 1:
			v, err := a.parseImmediate(ins.operand, 0xFF, p.lineNo)
			if err != nil {
				return nil, err
			}
			program = append(program, byte(v))
		case 2:
			v, err := a.parseImmediate(ins.operand, 0xFFFF, p.lineNo)
			if err != nil {
				return nil, err
			}
			program = append(program, byte(v&0xFF), byte(v>>8))
		}
	}

	symbols := make(map[string]int, len(a.symbols))
	for _, sym := range a.symbols {
		symbols[sym.name] = sym.value
	}

	return &Image{Code: program, Symbols: symbols, SourceMap: sourceMap}, nil
}

// resolve picks the opcode for a parsed instruction line.
func resolve(p parsedLine) (instruction, error) {
	ops := p.operands

	if opcode, ok := simpleOps[p.mnemonic]; ok {
		if len(ops) != 0 {
			return instruction{}, fmt.Errorf("%s expects 0 operands on line %d", p.mnemonic, p.lineNo)
		}
		return instruction{opcode: opcode}, nil
	}

	if opcode, ok := jumpOps[p.mnemonic]; ok {
		if len(ops) != 1 {
			return instruction{}, fmt.Errorf("%s expects 1 operand on line %d", p.mnemonic, p.lineNo)
		}
		return instruction{opcode: opcode, operand: ops[0]}, nil
	}

	switch p.mnemonic {
	case "LDI":
		if len(ops) != 2 {
			return instruction{}, fmt.Errorf("LDI expects 2 operands on line %d", p.lineNo)
		}
		opcode, ok := ldiForms[strings.ToUpper(ops[0])]
		if !ok {
			return instruction{}, fmt.Errorf("invalid register '%s' on line %d", ops[0], p.lineNo)
		}
		return instruction{opcode: opcode, operand: ops[1]}, nil

	case "MOV":
		if len(ops) < 2 {
			return instruction{}, fmt.Errorf("MOV expects 2 or 3 operands on line %d", p.lineNo)
		}
		form := strings.ToUpper(ops[0] + " " + ops[1])
		opcode, ok := movForms[form]
		if !ok {
			return instruction{}, fmt.Errorf("invalid MOV operands '%s' on line %d", ops[0]+" "+ops[1], p.lineNo)
		}
		width, _ := cpu.InstructionLength(opcode)
		if want := width + 1; len(ops) != want {
			return instruction{}, fmt.Errorf("MOV %s expects %d operands on line %d", form, want, p.lineNo)
		}
		if width == 2 {
			return instruction{opcode: opcode, operand: ops[2]}, nil
		}
		return instruction{opcode: opcode}, nil
	}

	return instruction{}, fmt.Errorf("unknown instruction on line %d: %s", p.lineNo, p.mnemonic)
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	if eq := strings.IndexByte(line, '='); eq >= 0 {
		name := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		if !isIdentifier(name) {
			return p, fmt.Errorf("invalid symbol name '%s' on line %d", name, lineNo)
		}
		if value == "" || strings.ContainsAny(value, " \t") {
			return p, fmt.Errorf("invalid value for '%s' on line %d", name, lineNo)
		}
		p.equate = name
		p.operands = []string{value}
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}
		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(normalizeInstructionText(line))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}
	if strings.HasPrefix(p.mnemonic, ".") && !isSectionMarker(p.mnemonic) {
		return p, fmt.Errorf("unknown directive on line %d: %s", lineNo, fields[0])
	}
	if isSectionMarker(p.mnemonic) && len(p.operands) != 0 {
		return p, fmt.Errorf("%s takes no operands on line %d", p.mnemonic, lineNo)
	}

	return p, nil
}

func isSectionMarker(mnemonic string) bool {
	return mnemonic == ".TEXT" || mnemonic == ".DATA"
}

func stripComments(line string) string {
	if cut := strings.IndexByte(line, ';'); cut >= 0 {
		return line[:cut]
	}
	return line
}

func normalizeInstructionText(line string) string {
	return strings.ReplaceAll(line, ",", " ")
}

// parseValue resolves an equate right-hand side: a number or an earlier symbol.
func (a *Assembler) parseValue(token string, lineNo int) (int, error) {
	if value, err := strconv.ParseInt(token, 0, 32); err == nil {
		return int(value), nil
	}
	if sym, ok := a.symbols[token]; ok {
		return sym.value, nil
	}
	return 0, fmt.Errorf("invalid value '%s' on line %d", token, lineNo)
}

// parseImmediate resolves a numeric literal or symbol and checks it against max.
func (a *Assembler) parseImmediate(token string, max int, lineNo int) (int, error) {
	var value int
	if v, err := strconv.ParseInt(token, 0, 32); err == nil {
		value = int(v)
	} else if sym, ok := a.symbols[token]; ok {
		value = sym.value
	} else if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	} else {
		return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
	}

	if value < 0 || value > max {
		return 0, fmt.Errorf("immediate out of range on line %d: %s (max %d)", lineNo, token, max)
	}
	return value, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}
