package security

import (
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	minimumSecretLength = 32
	// secretAlphabet skips look-alike characters so a secret survives being
	// copied by hand into an env file.
	secretAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
)

var errEmptyAlphabet = errors.New("alphabet must not be empty")

// GenerateSecretKey returns a random SECRET_KEY value of at least 32 characters.
func GenerateSecretKey(length int) (string, error) {
	if length < minimumSecretLength {
		length = minimumSecretLength
	}
	return randomFromAlphabet(length, secretAlphabet)
}

// randomFromAlphabet draws bytes from crypto/rand and rejects those past the
// largest multiple of len(alphabet), so every character is equally likely.
func randomFromAlphabet(length int, alphabet string) (string, error) {
	if len(alphabet) == 0 || len(alphabet) > 256 {
		return "", errEmptyAlphabet
	}
	if length <= 0 {
		return "", nil
	}

	ceiling := 256 - 256%len(alphabet)
	out := make([]byte, 0, length)
	buffer := make([]byte, length+length/2)
	for len(out) < length {
		if _, err := rand.Read(buffer); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, value := range buffer {
			if int(value) >= ceiling {
				continue
			}
			out = append(out, alphabet[int(value)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
