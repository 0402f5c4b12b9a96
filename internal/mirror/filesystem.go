package mirror

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileSystemMirror stores artifacts as files under a root directory,
// typically on separate media (NAS mount, external drive).
type FileSystemMirror struct {
	root string
}

var _ Mirror = (*FileSystemMirror)(nil)

// NewFileSystemMirror creates a mirror rooted at the given path.
func NewFileSystemMirror(root string) (*FileSystemMirror, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create mirror directory: %w", err)
	}
	return &FileSystemMirror{root: root}, nil
}

// Put implements Mirror.
func (m *FileSystemMirror) Put(name string, r io.Reader, size int64) error {
	destPath := filepath.Join(m.root, name)
	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("mirror artifact already exists: %s", name)
	}

	// Write to a temp file in the same directory, then rename, so a
	// failed push never leaves a truncated artifact under the final name.
	tmpFile, err := os.CreateTemp(m.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// ValidateSetup implements Mirror.
func (m *FileSystemMirror) ValidateSetup() error {
	info, err := os.Stat(m.root)
	if err != nil {
		return fmt.Errorf("mirror root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("mirror root is not a directory: %s", m.root)
	}
	return nil
}
