// Package randid generates short random identifiers for file names and
// fallback record ids.
package randid

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const charset = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate returns a random lowercase alphanumeric string of length n.
func Generate(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[rand.IntN(len(charset))]
	}
	return string(b)
}

// Stamped returns "<unix millis>-<random n>" for t. Ids produced this way sort
// by creation time when compared as strings of equal length.
func Stamped(t time.Time, n int) string {
	return strconv.FormatInt(t.UnixMilli(), 10) + "-" + Generate(n)
}

// Valid reports whether s is non-empty and uses only characters Generate emits.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
