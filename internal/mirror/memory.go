package mirror

import (
	"fmt"
	"io"
	"sync"
)

// MemoryMirror is an in-memory Mirror for tests.
type MemoryMirror struct {
	mu        sync.Mutex
	artifacts map[string][]byte
}

var _ Mirror = (*MemoryMirror)(nil)

// NewMemoryMirror creates an empty in-memory mirror.
func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{artifacts: make(map[string][]byte)}
}

// Put implements Mirror.
func (m *MemoryMirror) Put(name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading artifact: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.artifacts[name]; ok {
		return fmt.Errorf("mirror artifact already exists: %s", name)
	}
	m.artifacts[name] = data
	return nil
}

// ValidateSetup implements Mirror.
func (m *MemoryMirror) ValidateSetup() error { return nil }

// Artifact returns a stored artifact, for test assertions.
func (m *MemoryMirror) Artifact(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.artifacts[name]
	return data, ok
}

// Names returns the stored artifact names, for test assertions.
func (m *MemoryMirror) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.artifacts))
	for name := range m.artifacts {
		names = append(names, name)
	}
	return names
}
