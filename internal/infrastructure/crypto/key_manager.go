// Package crypto provides the signing key management and JWT implementation
// behind the domain CryptoService interface.
package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// KeyManager holds the server's RSA signing key pair.
type KeyManager struct {
	keyID      string
	privateKey *rsa.PrivateKey
}

// NewKeyManager loads a PEM-encoded RSA private key from path. When path is
// empty it generates an ephemeral 2048-bit key; tokens signed with an
// ephemeral key do not survive a restart, so this is for development only.
func NewKeyManager(keyID, path string) (*KeyManager, error) {
	if path == "" {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
		return &KeyManager{keyID: keyID, privateKey: key}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key %s: %w", path, err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in signing key %s", path)
	}

	key, err := parsePrivateKey(block)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key %s: %w", path, err)
	}

	return &KeyManager{keyID: keyID, privateKey: key}, nil
}

func parsePrivateKey(block *pem.Block) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("signing key is not RSA")
	}
	return key, nil
}

// KeyID returns the kid applied to signed tokens and the JWKS entry.
func (m *KeyManager) KeyID() string { return m.keyID }

// PrivateKey returns the signing key.
func (m *KeyManager) PrivateKey() *rsa.PrivateKey { return m.privateKey }

// PublicKey returns the verification key.
func (m *KeyManager) PublicKey() *rsa.PublicKey { return &m.privateKey.PublicKey }
