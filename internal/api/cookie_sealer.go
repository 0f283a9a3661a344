package api

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/travelgc/internal/security"
)

const sealedCookieVersion = "v1"

var (
	errInvalidSealedCookie = errors.New("invalid sealed cookie")
	errExpiredSealedCookie = errors.New("sealed cookie expired")
)

// cookieSealer encrypts small JSON cookie values with AES-GCM. The cookie
// name is bound as additional data, so a value only opens under its own name.
type cookieSealer struct {
	aead cipher.AEAD
}

type sealedEnvelope struct {
	Expires int64           `json:"exp"`
	Data    json.RawMessage `json:"data"`
}

func newCookieSealer(secret []byte) (*cookieSealer, error) {
	key, err := security.DeriveKey(secret, "secure-cookie.v1")
	if err != nil {
		return nil, fmt.Errorf("derive cookie key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cookie cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithRandomNonce(block)
	if err != nil {
		return nil, fmt.Errorf("init cookie aead: %w", err)
	}
	return &cookieSealer{aead: aead}, nil
}

func (sealer *cookieSealer) sealJSON(cookieName string, value any, expires time.Time) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode %s cookie: %w", cookieName, err)
	}
	envelope, err := json.Marshal(sealedEnvelope{Expires: expires.Unix(), Data: data})
	if err != nil {
		return "", fmt.Errorf("encode %s envelope: %w", cookieName, err)
	}

	sealed := sealer.aead.Seal(nil, nil, envelope, []byte(cookieName))
	return sealedCookieVersion + "." + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// openJSON decrypts raw into target. Tampered, foreign or malformed values
// all report errInvalidSealedCookie.
func (sealer *cookieSealer) openJSON(cookieName string, raw string, now time.Time, target any) error {
	version, encoded, found := strings.Cut(strings.TrimSpace(raw), ".")
	if !found || version != sealedCookieVersion || encoded == "" {
		return errInvalidSealedCookie
	}
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return errInvalidSealedCookie
	}
	plaintext, err := sealer.aead.Open(nil, nil, sealed, []byte(cookieName))
	if err != nil {
		return errInvalidSealedCookie
	}

	var envelope sealedEnvelope
	if err := json.Unmarshal(plaintext, &envelope); err != nil {
		return errInvalidSealedCookie
	}
	if now.Unix() >= envelope.Expires {
		return errExpiredSealedCookie
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		return errInvalidSealedCookie
	}
	return nil
}
