// Package cryptotoken seals record identifiers into opaque tokens.
//
// The dashboard never sees raw Speak Up or API key identifiers; list rows
// carry an encryptedData token, and getbyId/save echo it back. Tokens are
// NaCl secretbox sealed (authenticated encryption), so a tampered or
// fabricated token fails to open rather than resolving to someone else's
// record.
package cryptotoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrInvalidToken is returned when a token cannot be decoded or fails
// authentication.
var ErrInvalidToken = errors.New("invalid identifier token")

// Sealer seals and opens identifier tokens with a fixed key derived from
// the configured secret.
type Sealer struct {
	key [32]byte
}

// New creates a Sealer. The secret may be any non-empty string; it is
// hashed to the fixed secretbox key size.
func New(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("cryptotoken: secret must not be empty")
	}
	s := &Sealer{key: sha256.Sum256([]byte(secret))}
	return s, nil
}

// Seal encrypts an identifier into a URL-safe opaque token.
func (s *Sealer) Seal(id string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	sealed := secretbox.Seal(nonce[:], []byte(id), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a token produced by Seal. Returns ErrInvalidToken for
// anything that was not sealed with this Sealer's secret.
func (s *Sealer) Open(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) < nonceSize {
		return "", ErrInvalidToken
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	id, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrInvalidToken
	}
	return string(id), nil
}
