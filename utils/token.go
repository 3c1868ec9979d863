package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// tokenBytes gives 192 bits of entropy, comfortably past the point where
// collisions matter without a uniqueness retry loop.
const tokenBytes = 24

// NewShareToken returns a random URL-safe share token.
func NewShareToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has no usable entropy source.
		panic("share token entropy unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
