package mirror

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSystemMirror_Put(t *testing.T) {
	root := t.TempDir()
	m, err := NewFileSystemMirror(root)
	if err != nil {
		t.Fatal(err)
	}

	content := []byte("20260830 100000 state content")
	if err := m.Put("20260830 100000.state", bytes.NewReader(content), int64(len(content))); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "20260830 100000.state"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("stored artifact = %q, want %q", got, content)
	}
}

func TestFileSystemMirror_RefusesDuplicates(t *testing.T) {
	m, err := NewFileSystemMirror(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Put("a.state", strings.NewReader("one"), 3); err != nil {
		t.Fatal(err)
	}
	if err := m.Put("a.state", strings.NewReader("two"), 3); err == nil {
		t.Error("duplicate Put() succeeded, want error")
	}
}

func TestFileSystemMirror_SizeMismatchLeavesNothing(t *testing.T) {
	root := t.TempDir()
	m, err := NewFileSystemMirror(root)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Put("a.state", strings.NewReader("short"), 999); err == nil {
		t.Fatal("Put() with wrong size succeeded, want error")
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("mirror directory not empty after failed push: %v", entries)
	}
}

func TestFileSystemMirror_ValidateSetup(t *testing.T) {
	t.Run("directory", func(t *testing.T) {
		m, err := NewFileSystemMirror(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		if err := m.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})

	t.Run("root removed after creation", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "mirror")
		m, err := NewFileSystemMirror(root)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.RemoveAll(root); err != nil {
			t.Fatal(err)
		}
		if err := m.ValidateSetup(); err == nil {
			t.Error("ValidateSetup() succeeded on a missing root")
		}
	})
}

func TestMemoryMirror(t *testing.T) {
	m := NewMemoryMirror()

	if err := m.Put("a.state", strings.NewReader("abc"), 3); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := m.Put("a.state", strings.NewReader("abc"), 3); err == nil {
		t.Error("duplicate Put() succeeded, want error")
	}
	if err := m.Put("b.state", strings.NewReader("abc"), 99); err == nil {
		t.Error("Put() with wrong size succeeded, want error")
	}

	data, ok := m.Artifact("a.state")
	if !ok || string(data) != "abc" {
		t.Errorf("Artifact() = %q, %v, want abc, true", data, ok)
	}
	if names := m.Names(); len(names) != 1 {
		t.Errorf("Names() = %v, want one entry", names)
	}
}
