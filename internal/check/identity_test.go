package check_test

import (
	"errors"
	"path/filepath"
	"testing"

	"snapcheck/internal/check"
)

func TestNormalize(t *testing.T) {
	root := filepath.Join("archive", "photos")

	t.Run("file directly under root", func(t *testing.T) {
		got, err := check.Normalize(filepath.Join(root, "a.jpg"), root)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if got != "a.jpg" {
			t.Errorf("Normalize() = %q, want %q", got, "a.jpg")
		}
	})

	t.Run("nested file uses forward slashes", func(t *testing.T) {
		got, err := check.Normalize(filepath.Join(root, "2024", "06", "a.jpg"), root)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if got != "2024/06/a.jpg" {
			t.Errorf("Normalize() = %q, want %q", got, "2024/06/a.jpg")
		}
	})

	t.Run("rejects path escaping the root", func(t *testing.T) {
		_, err := check.Normalize(filepath.Join("archive", "other", "a.jpg"), root)
		if !errors.Is(err, check.ErrPathEscapesRoot) {
			t.Errorf("Normalize() error = %v, want ErrPathEscapesRoot", err)
		}
	})

	t.Run("rejects dot-dot traversal", func(t *testing.T) {
		_, err := check.Normalize(filepath.Join(root, "..", "secret"), root)
		if !errors.Is(err, check.ErrPathEscapesRoot) {
			t.Errorf("Normalize() error = %v, want ErrPathEscapesRoot", err)
		}
	})

	t.Run("rejects the root itself", func(t *testing.T) {
		if _, err := check.Normalize(root, root); err == nil {
			t.Error("Normalize() expected error for the root itself")
		}
	})

	t.Run("identities are case-sensitive", func(t *testing.T) {
		lower, err := check.Normalize(filepath.Join(root, "a.jpg"), root)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		upper, err := check.Normalize(filepath.Join(root, "A.jpg"), root)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if lower == upper {
			t.Errorf("expected distinct identities, both = %q", lower)
		}
	})
}
