// Package history defines the search history domain types and the store that
// owns them.
package history

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxEntries is the number of entries kept when no limit is configured.
const DefaultMaxEntries = 20

// Kind discriminates how an entry was produced.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// ParseKind parses a kind name. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindText:
		return KindText, nil
	case KindImage:
		return KindImage, nil
	default:
		return "", fmt.Errorf("invalid kind %q (expected text or image)", s)
	}
}

func (k Kind) valid() bool {
	return k == KindText || k == KindImage
}

// Entry is one record of a past search or capture. Timestamps are persisted
// as unix milliseconds.
type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"type"`
	ImageRef  string    `json:"imageUrl,omitempty"` // only set for KindImage
}

// IsImage reports whether the entry came from an image search.
func (e Entry) IsImage() bool {
	return e.Kind == KindImage
}

type entryJSON struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
	Kind      Kind            `json:"type"`
	ImageRef  string          `json:"imageUrl,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e Entry) MarshalJSON() ([]byte, error) {
	var ms int64
	if !e.Timestamp.IsZero() {
		ms = e.Timestamp.UnixMilli()
	}
	return json.Marshal(entryJSON{
		ID:        e.ID,
		Text:      e.Text,
		Timestamp: json.RawMessage(strconv.FormatInt(ms, 10)),
		Kind:      e.Kind,
		ImageRef:  e.ImageRef,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The timestamp may be unix
// milliseconds or an RFC 3339 string.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}

	*e = Entry{
		ID:        raw.ID,
		Text:      raw.Text,
		Timestamp: ts,
		Kind:      raw.Kind,
		ImageRef:  raw.ImageRef,
	}
	return nil
}

func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		if ms == 0 {
			return time.Time{}, nil
		}
		return time.UnixMilli(int64(ms)), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %s", raw)
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return ts, nil
}

// DecodeList parses a persisted list as stored under the list key. The
// result is not normalized.
func DecodeList(raw string) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("parse history list: %w", err)
	}
	return entries, nil
}

func encodeEntries(entries []Entry) (string, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshal history list: %w", err)
	}
	return string(data), nil
}

// normalize restores list invariants on data read from the backend: blank or
// duplicate texts are dropped (first occurrence wins), kinds are repaired and
// the list is truncated to limit. It returns the number of entries dropped.
func normalize(entries []Entry, limit int) ([]Entry, int) {
	out := make([]Entry, 0, min(len(entries), limit))
	seen := make(map[string]bool, len(entries))
	dropped := 0

	for _, e := range entries {
		e.Text = strings.TrimSpace(e.Text)
		if e.Text == "" || e.ID == "" || seen[e.Text] {
			dropped++
			continue
		}
		if !e.Kind.valid() {
			e.Kind = KindText
		}
		if e.Kind != KindImage {
			e.ImageRef = ""
		}
		if len(out) == limit {
			dropped++
			continue
		}
		seen[e.Text] = true
		out = append(out, e)
	}

	return out, dropped
}
