// Package shortid generates and validates the short public identifiers used
// in share URLs and storage keys.
package shortid

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

const (
	// Length is the number of characters in a generated id.
	Length = 10
	// Alphabet is the character set ids are drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
)

var pattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,10}$`)

// New returns a random id of Length characters drawn uniformly from Alphabet
// using crypto/rand.
func New() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	buf := make([]byte, Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate short id: %w", err)
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Valid reports whether id matches [A-Za-z0-9_-]{1,10}.
func Valid(id string) bool {
	return pattern.MatchString(id)
}
