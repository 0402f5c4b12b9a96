package encryption

import (
	"fmt"
	"io"
)

// PlainEncryptor is the no-encryption Encryptor: artifacts are mirrored
// as-is.
type PlainEncryptor struct{}

var _ Encryptor = (*PlainEncryptor)(nil)

// NewPlainEncryptor creates a passthrough encryptor.
func NewPlainEncryptor() *PlainEncryptor { return &PlainEncryptor{} }

// Setup implements Encryptor. Nothing to generate.
func (*PlainEncryptor) Setup(string) error { return nil }

// Encrypt implements Encryptor by copying r to w unchanged.
func (*PlainEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

// Suffix implements Encryptor.
func (*PlainEncryptor) Suffix() string { return "" }
