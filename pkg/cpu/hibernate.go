package cpu

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Snapshot archive layout:
//
//	cpu_state.json  registers, flags, PC and step count
//	memory.bin      256 bytes of data memory
//	program.bin     the loaded program image
const (
	stateEntry   = "cpu_state.json"
	memoryEntry  = "memory.bin"
	programEntry = "program.bin"
)

// HibernateToBytes serialises the machine into an in-memory ZIP archive.
func (c *CPU) HibernateToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	stateJSON, err := json.MarshalIndent(c.State(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cpu_state: %w", err)
	}
	if err := writeZipEntry(zw, stateEntry, stateJSON); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, memoryEntry, c.Memory[:]); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, programEntry, c.Program); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreFromBytes reads an archive produced by HibernateToBytes and applies
// it to the CPU. A missing program entry keeps the currently loaded program.
func (c *CPU) RestoreFromBytes(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	jsonData, err := readZipEntry(fileMap, stateEntry)
	if err != nil {
		return err
	}
	var state State
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return fmt.Errorf("unmarshal cpu_state: %w", err)
	}

	memData, err := readZipEntry(fileMap, memoryEntry)
	if err != nil {
		return err
	}
	if len(memData) != MemorySize {
		return fmt.Errorf("memory.bin: got %d bytes, want %d", len(memData), MemorySize)
	}
	copy(state.Memory[:], memData)

	if program, err := readZipEntry(fileMap, programEntry); err == nil {
		if len(program) > MaxProgramSize {
			return fmt.Errorf("%w: %d bytes", ErrProgramTooLarge, len(program))
		}
		c.Program = program
	}

	c.Restore(state)
	return nil
}

// HibernateToFile writes the snapshot archive to path.
func (c *CPU) HibernateToFile(path string) error {
	data, err := c.HibernateToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RestoreFromFile restores the machine from a snapshot archive at path.
func (c *CPU) RestoreFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.RestoreFromBytes(data)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
