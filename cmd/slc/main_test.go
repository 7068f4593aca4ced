package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slc/pkg/cpu"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	t.Setenv("ENV_PATH", filepath.Join(t.TempDir(), "missing.env"))
	path := filepath.Join(t.TempDir(), "prog.sl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunCompilesToStdout(t *testing.T) {
	path := writeSource(t, "int x;\nx = 5;\n")
	var stdout, stderr bytes.Buffer

	code := run([]string{path}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), ".text\n")
	assert.Contains(t, stdout.String(), "ldi A 5\nmov M A 100\n")
	assert.True(t, strings.HasSuffix(stdout.String(), "x_addr = 100\nhlt\n"))
}

func TestRunExecutes(t *testing.T) {
	path := writeSource(t, "int x;\nint y;\nx = 5;\ny = x + 3;\n")
	snap := filepath.Join(t.TempDir(), "state.zip")
	var stdout, stderr bytes.Buffer

	code := run([]string{"-run", "-snapshot", snap, path}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "y            @101 = 8")
	assert.Contains(t, stdout.String(), "halted")

	vm := cpu.NewCPU()
	require.NoError(t, vm.RestoreFromFile(snap))
	assert.Equal(t, byte(8), vm.Memory[101])
}

func TestRunWritesFiles(t *testing.T) {
	path := writeSource(t, "int a;\na = 1;\n")
	asmPath := filepath.Join(t.TempDir(), "prog.asm")
	var stdout, stderr bytes.Buffer

	code := run([]string{"-bin", "-o", asmPath, path}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assembly, err := os.ReadFile(asmPath)
	require.NoError(t, err)
	assert.Contains(t, string(assembly), "mov M A 100")

	binPath := strings.TrimSuffix(path, ".sl") + ".bin"
	bin, err := os.ReadFile(binPath)
	require.NoError(t, err)
	assert.Equal(t, []byte{cpu.OpLDIA, 1, cpu.OpSTA, 100, cpu.OpHLT}, bin)

	stdout.Reset()
	code = run([]string{"-run-bin", binPath}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "60: 00 00 00 00 01")
}

func TestRunBaseOverride(t *testing.T) {
	path := writeSource(t, "int a;\na = 1;\n")
	var stdout, stderr bytes.Buffer

	code := run([]string{"-base", "16", path}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "a_addr = 16")
}

func TestRunDumps(t *testing.T) {
	path := writeSource(t, "int a;\n")
	var stdout, stderr bytes.Buffer

	code := run([]string{"-tokens", "-ast", path}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "KEYWORD_INT")
	assert.Contains(t, stdout.String(), "DECLARATION: a")
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		args    []string
		want    int
		wantErr string
	}{
		{"syntax", "int 5;", nil, 1, "syntax error"},
		{"semantic", "x = 1 == 1;", nil, 1, "semantic error"},
		{"assembly", "x = 999;", []string{"-run"}, 1, "assembly error"},
		{"bad base", "int a;", []string{"-base", "300"}, 1, "config error"},
		{"no input", "", []string{"-v"}, 2, "usage"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{}, tc.args...)
			if tc.src != "" {
				args = append(args, writeSource(t, tc.src))
			} else {
				t.Setenv("ENV_PATH", filepath.Join(t.TempDir(), "missing.env"))
			}
			var stdout, stderr bytes.Buffer

			code := run(args, &stdout, &stderr)

			assert.Equal(t, tc.want, code)
			assert.Contains(t, stderr.String(), tc.wantErr)
		})
	}
}
