package authstate

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"
)

// Artifacts carry live session credentials, so they can optionally be
// sealed at rest: AES-256-GCM with a key derived from a random secret kept
// in the OS keyring. Sealed files start with a version prefix so Load can
// detect them without configuration.

const (
	sealPrefix     = "authstate-seal-v1\n"
	sealService    = "authstate"
	sealAccount    = "artifact-seal"
	sealKDFSalt    = "authstate.artifact"
	sealIterations = 4096
	sealKeyLen     = 32
	sealNonceLen   = 12
)

// Sealer encrypts and decrypts artifact bytes. The zero value is not usable;
// call NewSealer.
type Sealer struct {
	Service string
	Account string
}

// NewSealer returns a sealer bound to the default keyring entry.
func NewSealer() *Sealer {
	return &Sealer{Service: sealService, Account: sealAccount}
}

// IsSealed reports whether data is a sealed artifact blob.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, []byte(sealPrefix))
}

// secret fetches the seal secret from the keyring, creating one on first
// use. The secret never leaves the local machine.
func (s *Sealer) secret() (string, error) {
	pw, err := keyring.Get(s.Service, s.Account)
	if err == nil && pw != "" {
		return pw, nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("authstate: keyring read: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	pw = hex.EncodeToString(raw)
	if err := keyring.Set(s.Service, s.Account, pw); err != nil {
		return "", fmt.Errorf("authstate: keyring write: %w", err)
	}
	return pw, nil
}

func (s *Sealer) aead() (cipher.AEAD, error) {
	pw, err := s.secret()
	if err != nil {
		return nil, err
	}
	key := pbkdf2.Key([]byte(pw), []byte(sealKDFSalt), sealIterations, sealKeyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plain artifact bytes into a prefixed blob.
func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	aead, err := s.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, sealNonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(sealPrefix)+sealNonceLen+len(plain)+aead.Overhead())
	out = append(out, []byte(sealPrefix)...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plain, nil), nil
}

// Open decrypts a sealed blob back into plain artifact bytes.
func (s *Sealer) Open(blob []byte) ([]byte, error) {
	if !IsSealed(blob) {
		return nil, errors.New("authstate: missing seal prefix")
	}
	payload := blob[len(sealPrefix):]
	if len(payload) < sealNonceLen {
		return nil, errors.New("authstate: sealed blob too short")
	}
	aead, err := s.aead()
	if err != nil {
		return nil, err
	}
	nonce := payload[:sealNonceLen]
	return aead.Open(nil, nonce, payload[sealNonceLen:], nil)
}
