// Package invite produces the short codes people use to join a group.
package invite

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Alphabet is URL-safe and case-insensitive.
	Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	DefaultLength = 10
	MinLength     = 6
	MaxLength     = 32
)

// Generator produces invite codes. It does not check uniqueness; whoever
// stores the code must reject collisions and ask again.
type Generator interface {
	Generate() (string, error)
}

// Random draws fixed-length codes from Alphabet using crypto/rand.
type Random struct {
	length int
}

// NewRandom returns a generator for codes of the given length.
// Lengths outside [6, 32] fall back to DefaultLength.
func NewRandom(length int) *Random {
	if length < MinLength || length > MaxLength {
		length = DefaultLength
	}
	return &Random{length: length}
}

// Generate returns a new code.
func (r *Random) Generate() (string, error) {
	limit := big.NewInt(int64(len(Alphabet)))
	var b strings.Builder
	b.Grow(r.length)
	for i := 0; i < r.length; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Length is the size of every generated code.
func (r *Random) Length() int {
	return r.length
}

// Normalize cleans up a code typed or pasted by a user. It accepts a full
// join link and keeps only the last path segment.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	code = strings.TrimRight(code, "/")
	if i := strings.LastIndexByte(code, '/'); i >= 0 {
		code = code[i+1:]
	}
	return strings.ToLower(code)
}

// Valid reports whether code could have come from a Random generator.
func Valid(code string) bool {
	if len(code) < MinLength || len(code) > MaxLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(Alphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}

// Func adapts a plain function to Generator.
type Func func() (string, error)

func (f Func) Generate() (string, error) {
	return f()
}
