package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Digits is the length of generated verification codes.
const Digits = 6

var codeSpace = big.NewInt(1_000_000)

// Generator produces uniformly random numeric codes from crypto/rand.
type Generator struct{}

func NewGenerator() Generator { return Generator{} }

func (Generator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return fmt.Sprintf("%0*d", Digits, n.Int64()), nil
}

// Fixed always generates the same code. It exists for local development and
// deterministic tests; never wire it into a production deployment.
type Fixed string

func (f Fixed) Generate() (string, error) { return string(f), nil }
