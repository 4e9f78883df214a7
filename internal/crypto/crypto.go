// Package crypto encrypts chat content at rest with AES-256-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// AES-256 key length
const keyLength = 32

var (
	ErrInvalidKey        = errors.New("invalid encryption key")
	ErrMalformedCipher   = errors.New("malformed ciphertext")
	ErrDecryptionFailure = errors.New("decryption failed")
)

// DecodeKey decodes a Base64 key and checks that it is 32 bytes long.
func DecodeKey(keyBase64 string) ([]byte, error) {
	if keyBase64 == "" {
		return nil, fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}
	key, err := base64.StdEncoding.DecodeString(keyBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid base64: %v", ErrInvalidKey, err)
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("%w: must be %d bytes for AES-256, got %d", ErrInvalidKey, keyLength, len(key))
	}
	return key, nil
}

// Cipher seals and opens strings with a fixed key.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a raw 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("%w: must be %d bytes for AES-256", ErrInvalidKey, keyLength)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt returns base64(nonce || ciphertext).
func (c *Cipher) Encrypt(plainText string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCipher, err)
	}
	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize+c.aead.Overhead() {
		return "", fmt.Errorf("%w: too short", ErrMalformedCipher)
	}
	plain, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailure, err)
	}
	return string(plain), nil
}
