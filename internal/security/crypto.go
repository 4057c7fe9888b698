package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Encryptor encrypts fields at rest with AES-256-GCM. The context
// string (typically the organization id) is bound into the auth tag as
// AAD, so ciphertext cannot be replayed across organizations.
type Encryptor struct {
	key []byte
}

// NewEncryptor expects the master key as a 64-character hex string
// (32 bytes).
func NewEncryptor(masterKeyHex string) (*Encryptor, error) {
	if len(masterKeyHex) != 64 {
		return nil, errors.New("SECURITY_MASTER_KEY must be a 64-character hex string")
	}
	key, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid SECURITY_MASTER_KEY: %w", err)
	}
	return &Encryptor{key: key}, nil
}

// Encrypt returns iv:tag:ciphertext, all hex-encoded.
func (e *Encryptor) Encrypt(plaintext, context string) (string, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	iv := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), []byte(context))
	// gcm.Seal appends the 16-byte tag to the ciphertext.
	tagStart := len(sealed) - gcm.Overhead()
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt; the context must match the one used at
// encryption time.
func (e *Encryptor) Decrypt(encrypted, context string) (string, error) {
	parts := strings.Split(encrypted, ":")
	if len(parts) != 3 {
		return "", errors.New("invalid encrypted data format")
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("invalid iv: %w", err)
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("invalid tag: %w", err)
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("invalid ciphertext: %w", err)
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), []byte(context))
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plaintext), nil
}
