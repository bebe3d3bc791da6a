package pkg

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

const (
	sessionAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	sessionLength   = 32
)

// GenerateSessionID - generates an opaque session token that namespaces one seat's requests.
func GenerateSessionID() string {
	b := make([]byte, sessionLength)
	for i := range b {
		b[i] = sessionAlphabet[rand.IntN(len(sessionAlphabet))] //nolint: gosec // sessions only need to be distinct
	}

	return string(b)
}

// GenerateMatchID - generates a unique identifier for the match.
func GenerateMatchID() string {
	return uuid.NewString()
}
