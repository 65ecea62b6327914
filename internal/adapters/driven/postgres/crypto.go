package postgres

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
)

// Encrypted blobs are laid out as version(1) || nonce(12) || ciphertext.
// The leading version byte leaves room to rotate the format without
// re-encrypting every stored token first.
const (
	secretVersion = 0x01
	nonceSize     = 12
	keySize       = 32
)

var (
	// ErrInvalidKeySize is returned when the encryption key is not 32 bytes.
	ErrInvalidKeySize = errors.New("encryption key must be 32 bytes")

	// ErrInvalidBlobSize is returned when the encrypted blob is too small.
	ErrInvalidBlobSize = errors.New("encrypted blob is too small")

	// ErrUnsupportedVersion is returned when the blob version is not supported.
	ErrUnsupportedVersion = errors.New("unsupported secret blob version")

	// ErrDecryptionFailed is returned when decryption fails (wrong key or corrupted data).
	ErrDecryptionFailed = errors.New("failed to decrypt secret blob")
)

// SecretEncryptor seals platform OAuth tokens with AES-256-GCM before
// the connection store writes them. Values are JSON-marshaled, so any
// secrets struct round-trips through one blob column.
type SecretEncryptor struct {
	gcm cipher.AEAD
}

// NewSecretEncryptor creates an encryptor from a 32-byte key.
func NewSecretEncryptor(key []byte) (*SecretEncryptor, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &SecretEncryptor{gcm: gcm}, nil
}

// Encrypt marshals value to JSON and seals it into a versioned blob
// under a fresh random nonce.
func (e *SecretEncryptor) Encrypt(value any) ([]byte, error) {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	blob := make([]byte, 1+nonceSize, 1+nonceSize+len(plaintext)+e.gcm.Overhead())
	blob[0] = secretVersion
	copy(blob[1:], nonce)

	return e.gcm.Seal(blob, nonce, plaintext, nil), nil
}

// Decrypt opens a blob and unmarshals the plaintext into value, which
// must be a pointer. A wrong key and a corrupted blob are not
// distinguishable; both surface as ErrDecryptionFailed.
func (e *SecretEncryptor) Decrypt(blob []byte, value any) error {
	if len(blob) < 1+nonceSize+e.gcm.Overhead() {
		return ErrInvalidBlobSize
	}
	if blob[0] != secretVersion {
		return fmt.Errorf("%w: got version %d", ErrUnsupportedVersion, blob[0])
	}

	nonce := blob[1 : 1+nonceSize]
	plaintext, err := e.gcm.Open(nil, nonce, blob[1+nonceSize:], nil)
	if err != nil {
		return ErrDecryptionFailed
	}

	if err := json.Unmarshal(plaintext, value); err != nil {
		return fmt.Errorf("unmarshal decrypted value: %w", err)
	}

	return nil
}
