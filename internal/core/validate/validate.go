// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxQueryLength is the longest query accepted, in characters.
const MaxQueryLength = 2048

// Query validates a search query is non-empty after trimming whitespace and
// not longer than MaxQueryLength.
func Query(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("query is required")
	}
	if n := utf8.RuneCountInString(text); n > MaxQueryLength {
		return fmt.Errorf("query is too long (%d > %d characters)", n, MaxQueryLength)
	}
	return nil
}

// EntryID validates a history entry id argument.
func EntryID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("entry id is required")
	}
	if strings.ContainsAny(id, " \t\n") {
		return fmt.Errorf("entry id %q contains whitespace", id)
	}
	return nil
}
