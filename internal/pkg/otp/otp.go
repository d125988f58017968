package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Digits is the fixed length of a generated code.
const Digits = 6

var max = big.NewInt(1000000)

// New draws a uniform 6-digit numeric code, zero-padded.
func New() (string, error) {
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
