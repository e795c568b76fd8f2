// Package cryptox turns arbitrary values into opaque sealed tokens and back,
// keyed by a caller-supplied passphrase.
//
// Token layout: base64( salt[16] || nonce[12] || AES-256-GCM ciphertext+tag ).
// The key is derived with PBKDF2-SHA256. A fresh salt and nonce are generated
// on every Seal, so two seals of identical input never produce identical
// tokens.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/acuellar/cfdivault/internal/common"
	"github.com/acuellar/cfdivault/internal/sanitize"
)

const (
	saltSize   = 16
	nonceSize  = 12
	keySize    = 32
	iterations = 100_000
)

var (
	// ErrEncrypt reports a serialization or crypto-primitive failure during
	// Seal. A seal that fails produces no token at all.
	ErrEncrypt = errors.New("encryption error")

	// ErrDecrypt reports a malformed, truncated, or tampered token, or a
	// wrong passphrase. The cases are indistinguishable on purpose.
	ErrDecrypt = errors.New("decryption error")
)

// DeriveKey stretches passphrase into a 256-bit AES key using PBKDF2-SHA256
// with the given salt. Deterministic for fixed inputs.
func DeriveKey(passphrase, salt []byte) []byte {
	return pbkdf2.Key(passphrase, salt, iterations, keySize, sha256.New)
}

// Seal deep-cleans v, serializes it to JSON, and encrypts it under a key
// derived from passphrase. The returned token is self-contained: it embeds
// the salt and nonce needed by Open.
func Seal(v any, passphrase []byte) (string, error) {
	plaintext, err := marshalClean(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	salt := common.GenerateRandByteArray(saltSize)
	nonce := common.GenerateRandByteArray(nonceSize)

	aesgcm, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, saltSize+nonceSize+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Open decodes token, re-derives the key from passphrase and the embedded
// salt, verifies and decrypts the payload, and unmarshals it into v.
// Any failure (empty or truncated token, bad base64, tag mismatch, malformed
// plaintext) is reported as ErrDecrypt.
func Open(token string, passphrase []byte, v any) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", ErrDecrypt)
	}

	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(data) < saltSize+nonceSize {
		return fmt.Errorf("%w: token too short", ErrDecrypt)
	}

	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+nonceSize]
	ciphertext := data[saltSize+nonceSize:]

	aesgcm, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// marshalClean serializes v through a generic JSON round-trip so DeepClean
// can reach every nested string regardless of the concrete Go type.
func marshalClean(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(sanitize.DeepClean(generic))
}
