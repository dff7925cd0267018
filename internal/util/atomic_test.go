package util

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		if err := WriteFileAtomic(fs, "a/b/c.json", []byte(`{"ok":true}`)); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}
		got, err := afero.ReadFile(fs, "a/b/c.json")
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if string(got) != `{"ok":true}` {
			t.Errorf("content = %q", got)
		}
	})

	t.Run("overwrites and leaves no temp files", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		for _, data := range []string{"first", "second"} {
			if err := WriteFileAtomic(fs, "dir/file.txt", []byte(data)); err != nil {
				t.Fatalf("WriteFileAtomic() error = %v", err)
			}
		}
		got, _ := afero.ReadFile(fs, "dir/file.txt")
		if string(got) != "second" {
			t.Errorf("content = %q, want %q", got, "second")
		}
		entries, _ := afero.ReadDir(fs, "dir")
		if len(entries) != 1 {
			t.Errorf("expected only the target file, got %d entries", len(entries))
		}
	})

	t.Run("read-only filesystem", func(t *testing.T) {
		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
		err := WriteFileAtomic(fs, "x/y.txt", []byte("data"))
		if !errors.Is(err, os.ErrPermission) {
			t.Errorf("expected permission error, got %v", err)
		}
	})
}
