package session

import (
	"crypto/rand"
	"fmt"
	"os"
)

// LoadSecretKey reads the signing key at path, generating and persisting a
// new random key the first time.
func LoadSecretKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read session secret key: %w", err)
	}

	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session secret key: %w", err)
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write session secret key: %w", err)
	}
	return key, nil
}
