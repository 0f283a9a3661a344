package security

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const keyDerivationPrefix = "travelgc."

var errEmptySecret = errors.New("secret must not be empty")

// DeriveKey expands secret into a 32-byte key bound to purpose, so the session
// token and the cookie cipher never share key material.
func DeriveKey(secret []byte, purpose string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errEmptySecret
	}
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return nil, errors.New("key purpose is required")
	}

	reader := hkdf.New(sha256.New, secret, nil, []byte(keyDerivationPrefix+purpose))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}
