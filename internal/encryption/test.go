package encryption

import (
	"fmt"
	"io"
)

// TestEncryptor is a trivially reversible Encryptor for tests: it prefixes
// the plaintext with a marker so tests can assert that encryption was
// applied without real key material.
type TestEncryptor struct{}

var _ Encryptor = (*TestEncryptor)(nil)

// TestMarker is the prefix TestEncryptor writes before the plaintext.
const TestMarker = "test-encrypted:"

// NewTestEncryptor creates a marker-prefix encryptor.
func NewTestEncryptor() *TestEncryptor { return &TestEncryptor{} }

// Setup implements Encryptor. Nothing to generate.
func (*TestEncryptor) Setup(string) error { return nil }

// Encrypt implements Encryptor.
func (*TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := io.WriteString(w, TestMarker); err != nil {
		return fmt.Errorf("writing marker: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

// Suffix implements Encryptor.
func (*TestEncryptor) Suffix() string { return ".test" }
