// Command slc compiles SimpleLang programs to assembly for the 8-bit
// accumulator machine and can assemble and run them.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"slc/pkg/compiler"
	"slc/pkg/config"
	"slc/pkg/cpu"
	"slc/pkg/monitor"
	"slc/pkg/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	outPath    string
	bin        bool
	snapshot   string
	runBinPath string
	tokens     bool
	ast        bool
	run        bool
	base       int
	verbose    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	fs := flag.NewFlagSet("slc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: slc [flags] <file>")
		fs.PrintDefaults()
	}

	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&o.outPath, "o", "", "write assembly to this path (default: stdout)")
	fs.BoolVar(&o.bin, "bin", false, "assemble and write machine code next to the input (<file>.bin)")
	fs.StringVar(&o.snapshot, "snapshot", "", "with -run, save the final machine state to this archive")
	fs.StringVar(&o.runBinPath, "run-bin", "", "run an existing machine code file instead of compiling")
	fs.BoolVar(&o.tokens, "tokens", false, "print the token stream")
	fs.BoolVar(&o.ast, "ast", false, "print the syntax tree")
	fs.BoolVar(&o.run, "run", false, "assemble and run the program, then print the machine state")
	fs.IntVar(&o.base, "base", -1, "data memory address of the first variable (overrides config)")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return o, fs.Args(), nil
}

func run(args []string, stdout, stderr io.Writer) int {
	o, rest, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if o.verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return 1
	}
	if o.base >= 0 {
		cfg.Compiler.BaseAddress = o.base
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(stderr, "config error:", err)
			return 1
		}
	}

	if o.runBinPath != "" {
		if err := runBinary(o.runBinPath, cfg.Machine.MaxSteps, stdout); err != nil {
			fmt.Fprintf(stderr, "run failed for %q: %v\n", o.runBinPath, err)
			return 1
		}
		return 0
	}

	if len(rest) != 1 {
		fmt.Fprintln(stderr, "usage: slc [flags] <file>")
		return 2
	}
	inPath, _, err := utils.GetPathInfo(rest[0])
	if err != nil {
		fmt.Fprintln(stderr, "read error:", err)
		return 1
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(stderr, "read error:", err)
		return 1
	}
	src := string(data)

	if o.tokens {
		fmt.Fprintln(stdout, "Tokens")
		for _, tok := range compiler.Lex(src) {
			fmt.Fprintln(stdout, " ", tok)
		}
		fmt.Fprintln(stdout)
	}

	opts := compiler.Options{
		BaseAddress: cfg.Compiler.BaseAddress,
		Comments:    cfg.Compiler.Comments,
		Logger:      slog.Default(),
	}

	var out *compiler.Output
	if o.run || o.bin {
		out, err = compiler.Build(src, opts)
	} else {
		out, err = compiler.Compile(src, opts)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if o.ast {
		fmt.Fprintln(stdout, "AST")
		if err := compiler.Fprint(stdout, out.Program); err != nil {
			fmt.Fprintln(stderr, "write error:", err)
			return 1
		}
		fmt.Fprintln(stdout)
	}

	if err := writeAssembly(o.outPath, out.Assembly, stdout); err != nil {
		fmt.Fprintf(stderr, "failed to write assembly file %q: %v\n", o.outPath, err)
		return 1
	}

	if o.bin {
		binPath := utils.ReplaceExt(inPath, ".bin")
		if err := os.WriteFile(binPath, out.Image.Code, 0o644); err != nil {
			fmt.Fprintf(stderr, "failed to write binary file %q: %v\n", binPath, err)
			return 1
		}
		fmt.Fprintf(stderr, "assembled %d bytes -> %s\n", len(out.Image.Code), binPath)
	}

	if o.run {
		vm, err := execute(out.Image.Code, cfg.Machine.MaxSteps)
		if err != nil {
			fmt.Fprintln(stderr, "runtime error:", err)
			return 1
		}
		fmt.Fprintln(stdout)
		for _, l := range monitor.Lines(vm.State(), out.Symbols) {
			fmt.Fprintln(stdout, l)
		}
		if o.snapshot != "" {
			if err := vm.HibernateToFile(o.snapshot); err != nil {
				fmt.Fprintf(stderr, "failed to write snapshot %q: %v\n", o.snapshot, err)
				return 1
			}
		}
	}

	return 0
}

func writeAssembly(path, assembly string, stdout io.Writer) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(stdout, assembly)
		return err
	}
	return os.WriteFile(path, []byte(assembly), 0o644)
}

func execute(code []byte, maxSteps int) (*cpu.CPU, error) {
	vm := cpu.NewCPU()
	if err := vm.Load(code); err != nil {
		return nil, err
	}
	if err := vm.Run(maxSteps); err != nil {
		return nil, err
	}
	return vm, nil
}

func runBinary(path string, maxSteps int, stdout io.Writer) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	vm, err := execute(code, maxSteps)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "run complete (%s):\n", path)
	for _, l := range monitor.Lines(vm.State(), nil) {
		fmt.Fprintln(stdout, l)
	}
	for _, l := range monitor.Dump(vm.Memory) {
		fmt.Fprintln(stdout, l)
	}
	return nil
}
