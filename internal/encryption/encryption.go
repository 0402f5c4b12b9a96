// Package encryption protects mirrored snapshot artifacts. A snapshot lists
// every filename in the archive, which is worth hiding on an off-site copy
// even though the file contents themselves never leave the machine.
package encryption

import "io"

// Encryptor encrypts artifact streams before they are mirrored.
// Encryption uses the public key only — no user intervention required.
type Encryptor interface {
	// Setup performs one-time key generation. Called during `snapcheck
	// config init`. Generates a key pair, stores the public key in
	// plaintext, and encrypts the private key with the provided
	// passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Suffix is appended to mirrored artifact names ("" when artifacts
	// are stored as-is).
	Suffix() string
}
