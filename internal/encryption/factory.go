package encryption

import (
	"fmt"

	"snapcheck/internal/config"
)

// NewEncryptorFromConfig creates an Encryptor based on the encryption
// config type.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (Encryptor, error) {
	switch cfg.Type {
	case "", "none":
		return NewPlainEncryptor(), nil
	case "age":
		if cfg.PublicKeyPath == "" {
			return nil, fmt.Errorf("age encryption requires public_key_path to be set")
		}
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %s", cfg.Type)
	}
}
