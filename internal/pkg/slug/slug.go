package slug

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Alphabet for public quote slugs (36 characters: a-z, 0-9). Lowercase only
// so slugs survive case-insensitive copy/paste into chat apps.
const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength is the slug length used for public quote URLs.
const DefaultLength = 8

// Generate creates a cryptographically secure random slug.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid slug length: %d", length)
	}

	// Rejection sampling to avoid modulo bias.
	// 252 is the largest multiple of 36 below 256.
	const maxRandomByte = 252

	out := make([]byte, length)
	buf := make([]byte, length*2)
	written := 0

	for written < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read secure random bytes: %w", err)
		}

		for _, b := range buf {
			if b >= maxRandomByte {
				continue
			}
			out[written] = alphabet[int(b)%len(alphabet)]
			written++
			if written == length {
				break
			}
		}
	}

	return string(out), nil
}

// Valid reports whether s looks like a slug this package generated.
func Valid(s string) bool {
	if s == "" || len(s) > 32 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) == -1 {
			return false
		}
	}
	return true
}
