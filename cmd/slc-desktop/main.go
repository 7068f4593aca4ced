// Command slc-desktop compiles a SimpleLang program and steps it on the
// machine in a window, showing registers, variables and data memory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"slc/pkg/compiler"
	"slc/pkg/config"
	"slc/pkg/cpu"
	"slc/pkg/monitor"
	"slc/pkg/utils"
)

type Game struct {
	vm       *cpu.CPU
	symbols  []compiler.Symbol
	steps    int // instructions per frame
	paused   bool
	fault    error
	snapshot string

	screen *ebiten.Image // reused monitor canvas
	w, h   int
}

func NewGame(vm *cpu.CPU, symbols []compiler.Symbol, steps int) *Game {
	g := &Game{vm: vm, symbols: symbols, steps: steps}
	g.w, g.h = monitor.Size(g.lines())
	return g
}

func (g *Game) lines() []string {
	lines := monitor.Lines(g.vm.State(), g.symbols)

	status := "Space: pause  S: step  R: reset"
	if g.snapshot != "" {
		status += "  F5: save"
	}
	switch {
	case g.fault != nil:
		status = "fault: " + g.fault.Error()
	case g.paused:
		status = "paused  " + status
	}
	lines = append(lines, "", status, "")
	return append(lines, monitor.Dump(g.vm.Memory)...)
}

func (g *Game) step() {
	if g.vm.Halted {
		return
	}
	if err := g.vm.Step(); err != nil {
		g.fault = err
	}
}

// stepFrame runs up to the per-frame instruction budget. A fault stops the
// machine and is kept for display.
func (g *Game) stepFrame() error {
	for i := 0; i < g.steps && !g.vm.Halted; i++ {
		if err := g.vm.Step(); err != nil {
			g.fault = err
			return err
		}
	}
	return nil
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.vm.Reset()
		g.fault = nil
	}
	if g.snapshot != "" && inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := g.vm.HibernateToFile(g.snapshot); err != nil {
			log.Printf("snapshot failed: %v", err)
		}
	}

	if g.paused {
		if inpututil.IsKeyJustPressed(ebiten.KeyS) {
			g.step()
		}
		return nil
	}

	// faults are shown on screen rather than ending the game loop
	_ = g.stepFrame()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	img := monitor.Render(g.lines())
	b := img.Bounds()
	if g.screen == nil || g.screen.Bounds().Size() != b.Size() {
		if g.screen != nil {
			g.screen.Deallocate()
		}
		g.screen = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.screen.WritePixels(img.Pix)
	screen.DrawImage(g.screen, nil)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w, g.h
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	snapshot := flag.String("snapshot", "", "archive written when F5 is pressed")
	restore := flag.String("restore", "", "resume from a snapshot archive")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: slc-desktop [flags] <file>")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	fullPath, _, err := utils.GetPathInfo(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to resolve source file: %v", err)
	}
	sourceBytes, err := os.ReadFile(fullPath)
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}

	out, err := compiler.Build(string(sourceBytes), compiler.Options{
		BaseAddress: cfg.Compiler.BaseAddress,
		Comments:    cfg.Compiler.Comments,
	})
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}

	vm := cpu.NewCPU()
	if err := vm.Load(out.Image.Code); err != nil {
		log.Fatalf("Load failed: %v", err)
	}
	if *restore != "" {
		if err := vm.RestoreFromFile(*restore); err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
	}

	game := NewGame(vm, out.Symbols, cfg.Machine.StepsPerFrame)
	game.snapshot = *snapshot

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(game.w*2, game.h*2)
	ebiten.SetWindowTitle("SimpleLang Machine")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
