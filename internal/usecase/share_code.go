package usecase

import (
	"crypto/rand"
	"fmt"
)

// Share codes skip I, O, 0 and 1 so they survive being read aloud.
// The alphabet has exactly 32 symbols, so masking a random byte keeps the draw uniform.
const (
	shareCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	shareCodeLength   = 8
	minShareCodeLen   = 6
)

func generateShareCode(length int) (string, error) {
	length = max(length, minShareCodeLen)
	code := make([]byte, length)
	if _, err := rand.Read(code); err != nil {
		return "", fmt.Errorf("generate share code: %w", err)
	}
	for i := range code {
		code[i] = shareCodeAlphabet[code[i]&byte(len(shareCodeAlphabet)-1)]
	}
	return string(code), nil
}
