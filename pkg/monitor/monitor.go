// Package monitor renders the machine state as text and as an image for the
// desktop front end.
package monitor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"slc/pkg/compiler"
	"slc/pkg/cpu"
	"slc/pkg/grid"
)

// DumpColumns is the number of bytes per memory dump row.
const DumpColumns = 16

const (
	charWidth  = 7
	lineHeight = 15
	margin     = 6
)

var (
	background = color.RGBA{0x10, 0x14, 0x1c, 0xff}
	foreground = color.RGBA{0x9c, 0xe6, 0x9c, 0xff}
)

func flag(name string, set bool) string {
	if set {
		return name
	}
	return "-"
}

// Lines describes registers, flags and the value of every variable.
func Lines(s cpu.State, syms []compiler.Symbol) []string {
	status := "running"
	if s.Halted {
		status = "halted"
	}

	lines := []string{
		fmt.Sprintf("A=%3d  B=%3d  PC=%04X  %s%s", s.A, s.B, s.PC, flag("Z", s.Z), flag("C", s.C)),
		fmt.Sprintf("steps=%d  %s", s.Steps, status),
	}
	if len(syms) == 0 {
		return lines
	}

	lines = append(lines, "")
	for _, sym := range syms {
		v, ok := s.Peek(sym.Address)
		if !ok {
			lines = append(lines, fmt.Sprintf("%-12s @%-3d = ?", sym.Name, sym.Address))
			continue
		}
		lines = append(lines, fmt.Sprintf("%-12s @%-3d = %d", sym.Name, sym.Address, v))
	}
	return lines
}

// Dump formats data memory as rows of DumpColumns hex bytes.
func Dump(mem [cpu.MemorySize]byte) []string {
	rows := make([][]string, cpu.MemorySize/DumpColumns)
	for i, b := range mem {
		x, y := grid.GetGridCoords(i, DumpColumns)
		if x == 0 {
			rows[y] = make([]string, 0, DumpColumns)
		}
		rows[y] = append(rows[y], fmt.Sprintf("%02X", b))
	}

	lines := make([]string, len(rows))
	for y, row := range rows {
		lines[y] = fmt.Sprintf("%02X: %s", grid.Index(0, y, DumpColumns), strings.Join(row, " "))
	}
	return lines
}

// Size returns the pixel size Render produces for lines.
func Size(lines []string) (w, h int) {
	cols := 0
	for _, l := range lines {
		cols = max(cols, len(l))
	}
	return cols*charWidth + 2*margin, len(lines)*lineHeight + 2*margin
}

// Render draws lines with a fixed-width bitmap font.
func Render(lines []string) *image.RGBA {
	w, h := Size(lines)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(foreground),
		Face: basicfont.Face7x13,
	}
	for i, l := range lines {
		d.Dot = fixed.P(margin, margin+(i+1)*lineHeight-3)
		d.DrawString(l)
	}
	return img
}
