// Package keygen produces redemption keys for purchased games.
package keygen

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
)

const (
	digits       = "0123456789"
	groupLen     = 4
	groupCount   = 4
	keySeparator = "-"
)

// KeyLength is the formatted length of a generated key,
// e.g. "8351-0274-9962-1408".
const KeyLength = groupLen*groupCount + (groupCount - 1)

// unbiasedLimit is the largest multiple of len(digits) that fits in a byte.
// Bytes at or above it are rejected so every digit stays equally likely; a
// plain modulo would skew toward the low digits.
const unbiasedLimit = 256 - 256%len(digits)

// Generator produces redemption keys. Generated keys are random; global
// uniqueness is enforced by the order store's key constraint, with the
// caller regenerating on the rare collision.
type Generator interface {
	Generate() (string, error)
}

// DigitKeyGenerator draws 16 decimal digits from a random source and groups
// them four by four, giving 10^16 possible keys.
type DigitKeyGenerator struct {
	rand io.Reader
}

// NewGenerator creates the default redemption key generator backed by
// crypto/rand
func NewGenerator() Generator {
	return &DigitKeyGenerator{rand: rand.Reader}
}

// Generate returns a fresh key in XXXX-XXXX-XXXX-XXXX format
func (g *DigitKeyGenerator) Generate() (string, error) {
	var b strings.Builder
	b.Grow(KeyLength)

	written := 0
	raw := make([]byte, groupLen*groupCount)
	for written < groupLen*groupCount {
		if _, err := io.ReadFull(g.rand, raw); err != nil {
			return "", fmt.Errorf("failed to read random bytes for key: %w", err)
		}
		for _, r := range raw {
			if int(r) >= unbiasedLimit {
				continue
			}
			if written > 0 && written%groupLen == 0 {
				b.WriteString(keySeparator)
			}
			b.WriteByte(digits[int(r)%len(digits)])
			written++
			if written == groupLen*groupCount {
				break
			}
		}
	}

	return b.String(), nil
}
