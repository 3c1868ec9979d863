package utils

import (
	"strings"
	"testing"
)

// TestNewShareTokenShape tests token length and alphabet.
func TestNewShareTokenShape(t *testing.T) {
	token := NewShareToken()
	if len(token) != 32 {
		t.Fatalf("expected 32 chars, got %d", len(token))
	}
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	for _, r := range token {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("token %q contains non URL-safe rune %q", token, r)
		}
	}
}

// TestNewShareTokenUnique tests that tokens do not repeat.
func TestNewShareTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token := NewShareToken()
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}
