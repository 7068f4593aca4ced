package compiler

import (
	"fmt"
	"log/slog"

	"slc/pkg/asm"
)

// Options control a single compilation.
type Options struct {
	// BaseAddress is the data memory address of the first variable.
	BaseAddress int
	// Comments interleaves "; stmt" lines with the emitted instructions.
	Comments bool
	// Logger receives debug records for each pipeline stage. Nil discards.
	Logger *slog.Logger
}

// DefaultOptions matches the reference machine: variables from address 100,
// statement comments on.
func DefaultOptions() Options {
	return Options{BaseAddress: DefaultBaseAddress, Comments: true}
}

// Output is everything a compilation produces.
type Output struct {
	Program  *Program
	Symbols  []Symbol
	Assembly string
	Labels   int // labels drawn from the label counter

	// Image is set by Build only.
	Image *asm.Image
}

// Compile runs parse -> collect declarations -> generate over src.
// Each call uses its own parser, symbol table and label counter, so
// concurrent calls do not interact. On error no output is returned.
func Compile(src string, opts Options) (*Output, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	prog, err := ParseString(src)
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed program", "statements", len(prog.Stmts))

	syms := NewSymbolTable(opts.BaseAddress)
	CollectDeclarations(prog, syms)
	logger.Debug("collected declarations", "symbols", syms.Len())

	cg := newCodeGen(syms, opts.Comments)
	assembly, err := cg.emit(prog)
	if err != nil {
		return nil, err
	}
	logger.Debug("generated assembly",
		"labels", cg.nextLabel,
		"bytes", len(assembly),
	)

	return &Output{
		Program:  prog,
		Symbols:  syms.Symbols(),
		Assembly: assembly,
		Labels:   cg.nextLabel,
	}, nil
}

// Build compiles src and assembles the result into a machine image.
func Build(src string, opts Options) (*Output, error) {
	out, err := Compile(src, opts)
	if err != nil {
		return nil, err
	}
	img, err := asm.Assemble(out.Assembly)
	if err != nil {
		return nil, fmt.Errorf("assembly error: %w", err)
	}
	out.Image = img
	if opts.Logger != nil {
		opts.Logger.Debug("assembled image", "code_bytes", len(img.Code))
	}
	return out, nil
}
