// Package secrets provides the credential cipher used to store tenant API
// keys at rest.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/harborist/contextd/internal/core/ports/driven"
)

// Ensure Cipher implements the interface.
var _ driven.CredentialCipher = (*Cipher)(nil)

// argon2id parameters for key derivation from the configured passphrase.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	keyLength    = 32
)

// Cipher encrypts credential strings with AES-GCM under an argon2id-derived
// key. The nonce is prepended to the ciphertext and the whole blob is
// base64-encoded, so the output is an opaque printable string.
type Cipher struct {
	key []byte
}

// New derives the encryption key from passphrase and salt. The salt must be
// stable across restarts or previously stored credentials become
// undecryptable.
func New(passphrase string, salt []byte) (*Cipher, error) {
	if passphrase == "" {
		return nil, errors.New("secrets: passphrase is required")
	}
	if len(salt) == 0 {
		return nil, errors.New("secrets: salt is required")
	}
	key := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, keyLength)
	return &Cipher{key: key}, nil
}

// Encrypt seals plaintext and returns a base64 nonce+ciphertext blob.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	aesgcm, err := c.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := aesgcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Fails if the blob is malformed or was sealed
// under a different key.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}

	aesgcm, err := c.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := aesgcm.NonceSize()
	if len(blob) < nonceSize {
		return "", errors.New("secrets: ciphertext too short")
	}

	plaintext, err := aesgcm.Open(nil, blob[:nonceSize], blob[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("decrypting credential: %w", err)
	}
	return string(plaintext), nil
}

func (c *Cipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return aesgcm, nil
}
