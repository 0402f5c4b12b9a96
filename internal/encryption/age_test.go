package encryption

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filippo.io/age"

	"snapcheck/internal/config"
)

func newAgeFixture(t *testing.T) (*AgeEncryptor, config.EncryptionConfig) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "keys", "snapcheck.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "snapcheck.key"),
	}
	return NewAgeEncryptor(cfg), cfg
}

func TestAgeEncryptor_SetupAndEncrypt(t *testing.T) {
	enc, cfg := newAgeFixture(t)

	if err := enc.Setup("correct horse battery staple"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	pub, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		t.Fatalf("public key not written: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(pub)), "age1") {
		t.Errorf("public key = %q, want an age recipient string", pub)
	}

	plaintext := []byte("digest lines to protect")
	var ciphertext bytes.Buffer
	if err := enc.Encrypt(bytes.NewReader(plaintext), &ciphertext); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if bytes.Contains(ciphertext.Bytes(), plaintext) {
		t.Error("ciphertext contains the plaintext")
	}

	// Recover the private key with the passphrase, then decrypt the
	// artifact with it, the way the standard age tooling would.
	privFile, err := os.Open(cfg.PrivateKeyPath)
	if err != nil {
		t.Fatal(err)
	}
	defer privFile.Close()

	scrypt, err := age.NewScryptIdentity("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}
	keyReader, err := age.Decrypt(privFile, scrypt)
	if err != nil {
		t.Fatalf("decrypting private key: %v", err)
	}
	keyText, err := io.ReadAll(keyReader)
	if err != nil {
		t.Fatal(err)
	}
	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(keyText)))
	if err != nil {
		t.Fatalf("parsing recovered private key: %v", err)
	}

	decReader, err := age.Decrypt(bytes.NewReader(ciphertext.Bytes()), identity)
	if err != nil {
		t.Fatalf("decrypting artifact: %v", err)
	}
	got, err := io.ReadAll(decReader)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round trip = %q, want %q", got, plaintext)
	}
}

func TestAgeEncryptor_WrongPassphrase(t *testing.T) {
	enc, cfg := newAgeFixture(t)
	if err := enc.Setup("right"); err != nil {
		t.Fatal(err)
	}

	privFile, err := os.Open(cfg.PrivateKeyPath)
	if err != nil {
		t.Fatal(err)
	}
	defer privFile.Close()

	scrypt, err := age.NewScryptIdentity("wrong")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := age.Decrypt(privFile, scrypt); err == nil {
		t.Error("private key decrypted with the wrong passphrase")
	}
}

func TestAgeEncryptor_EncryptWithoutSetup(t *testing.T) {
	enc, _ := newAgeFixture(t)

	var out bytes.Buffer
	if err := enc.Encrypt(strings.NewReader("data"), &out); err == nil {
		t.Error("Encrypt() succeeded without a public key")
	}
}

func TestPlainEncryptor(t *testing.T) {
	enc := NewPlainEncryptor()

	var out bytes.Buffer
	if err := enc.Encrypt(strings.NewReader("as is"), &out); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if out.String() != "as is" {
		t.Errorf("output = %q, want passthrough", out.String())
	}
	if enc.Suffix() != "" {
		t.Errorf("Suffix() = %q, want empty", enc.Suffix())
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		enc, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "none"})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := enc.(*PlainEncryptor); !ok {
			t.Errorf("got %T, want *PlainEncryptor", enc)
		}
	})

	t.Run("age requires a public key path", func(t *testing.T) {
		if _, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "age"}); err == nil {
			t.Error("age config without public_key_path accepted")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "rot13"}); err == nil {
			t.Error("unknown encryption type accepted")
		}
	})
}
