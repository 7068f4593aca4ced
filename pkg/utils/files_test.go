package utils

import (
	"path/filepath"
	"testing"
)

func TestGetPathInfo(t *testing.T) {
	full, dir, err := GetPathInfo("progs/../prog.sl")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(full) {
		t.Errorf("fullPath %q is not absolute", full)
	}
	if filepath.Base(full) != "prog.sl" {
		t.Errorf("fullPath = %q", full)
	}
	if dir != filepath.Dir(full) {
		t.Errorf("parentDir = %q; want %q", dir, filepath.Dir(full))
	}
}

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		path, ext, want string
	}{
		{"prog.sl", ".asm", "prog.asm"},
		{"dir/prog.sl", ".bin", "dir/prog.bin"},
		{"prog", ".bin", "prog.bin"},
		{"a.b.sl", ".asm", "a.b.asm"},
	}
	for _, tc := range tests {
		if got := ReplaceExt(tc.path, tc.ext); got != tc.want {
			t.Errorf("ReplaceExt(%q, %q) = %q; want %q", tc.path, tc.ext, got, tc.want)
		}
	}
}
