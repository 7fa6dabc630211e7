// Package encryption seals serialized offchain configs with a key derived from the
// operator secret.
//
// Ciphertext layout: version(1) | salt(16) | nonce(24) | xchacha20poly1305 sealed box.
// The version and salt are authenticated as additional data.
package encryption

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	Version         byte = 1
	SaltLen              = 16
	SharedSecretLen      = 16

	headerLen = 1 + SaltLen + chacha20poly1305.NonceSizeX
)

var (
	sharedSecretInfo = []byte("ocr2 shared secret")
	configKeyInfo    = []byte("ocr2 offchain config")
)

type SharedSecret [SharedSecretLen]byte

// DeriveSharedSecret maps the operator secret to the shared secret every oracle uses
// to decrypt the offchain config.
func DeriveSharedSecret(secret []byte) (SharedSecret, error) {
	var ss SharedSecret
	if len(secret) == 0 {
		return ss, ErrEmptySecret
	}
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, sharedSecretInfo), ss[:]); err != nil {
		return ss, errors.Wrap(err, "failed to derive shared secret")
	}
	return ss, nil
}

// Encrypt seals plaintext under secret. Salt and nonce are random, so two calls give
// different ciphertexts that decrypt to the same plaintext.
func Encrypt(plaintext, secret []byte) ([]byte, error) {
	ss, err := DeriveSharedSecret(secret)
	if err != nil {
		return nil, err
	}
	return Seal(ss, plaintext, rand.Reader)
}

// Decrypt opens a ciphertext produced by Encrypt with the same secret.
func Decrypt(ciphertext, secret []byte) ([]byte, error) {
	ss, err := DeriveSharedSecret(secret)
	if err != nil {
		return nil, err
	}
	return Open(ss, ciphertext)
}

// Seal encrypts plaintext under a shared secret, reading salt and nonce from random.
func Seal(ss SharedSecret, plaintext []byte, random io.Reader) ([]byte, error) {
	out := make([]byte, headerLen, headerLen+len(plaintext)+chacha20poly1305.Overhead)
	out[0] = Version
	if _, err := io.ReadFull(random, out[1:headerLen]); err != nil {
		return nil, errors.Wrap(err, "failed to read salt and nonce")
	}
	salt, nonce := out[1:1+SaltLen], out[1+SaltLen:headerLen]

	aead, err := newAEAD(ss, salt)
	if err != nil {
		return nil, err
	}
	return aead.Seal(out, nonce, plaintext, out[:1+SaltLen]), nil
}

// Open reverses Seal. Any failure is a *DecryptionError.
func Open(ss SharedSecret, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < headerLen+chacha20poly1305.Overhead {
		return nil, &DecryptionError{Reason: "ciphertext too short"}
	}
	if ciphertext[0] != Version {
		return nil, &DecryptionError{Reason: "unknown ciphertext version"}
	}
	salt, nonce := ciphertext[1:1+SaltLen], ciphertext[1+SaltLen:headerLen]

	aead, err := newAEAD(ss, salt)
	if err != nil {
		return nil, &DecryptionError{Reason: "key derivation", Err: err}
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext[headerLen:], ciphertext[:1+SaltLen])
	if err != nil {
		return nil, &DecryptionError{Reason: "wrong secret or corrupted ciphertext", Err: err}
	}
	return plaintext, nil
}

func newAEAD(ss SharedSecret, salt []byte) (cipher.AEAD, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ss[:], salt, configKeyInfo), key); err != nil {
		return nil, errors.Wrap(err, "failed to derive config key")
	}
	return chacha20poly1305.NewX(key)
}
