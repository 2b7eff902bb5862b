package history

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/lens/pkg/randid"
)

// Default backend keys.
const (
	DefaultListKey      = "lens_search_history"
	DefaultIncognitoKey = "lens_incognito_mode"
)

// DefaultPersistTimeout bounds a single backend write.
const DefaultPersistTimeout = 5 * time.Second

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report persistence faults.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithMaxEntries limits the number of entries kept. Values < 1 are ignored.
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithKeys overrides the backend keys for the list and the incognito flag.
func WithKeys(listKey, incognitoKey string) Option {
	return func(s *Store) {
		if listKey != "" {
			s.listKey = listKey
		}
		if incognitoKey != "" {
			s.incognitoKey = incognitoKey
		}
	}
}

// WithPersistTimeout bounds each backend write.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the entry id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Store owns the in-memory search history and the incognito flag. Reads are
// served from memory; every mutation is queued for the backend and never
// waits for it.
//
// A Store is built once per process and handed to every consumer.
type Store struct {
	backend      Backend
	log          zerolog.Logger
	listKey      string
	incognitoKey string
	maxEntries   int
	timeout      time.Duration
	now          func() time.Time
	newID        func() string

	mu        sync.RWMutex
	entries   []Entry
	incognito bool

	writer *persister
}

// New creates a Store backed by backend. Call Initialize to load persisted
// state and Close on shutdown.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:      backend,
		log:          zerolog.Nop(),
		listKey:      DefaultListKey,
		incognitoKey: DefaultIncognitoKey,
		maxEntries:   DefaultMaxEntries,
		timeout:      DefaultPersistTimeout,
		now:          time.Now,
		newID:        newEntryID,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.writer = newPersister(backend, s.log, s.timeout)
	return s
}

// Initialize loads the list and the incognito flag from the backend. Each
// value falls back to its default (empty list, false) when it is missing or
// unreadable; faults are logged, never returned.
func (s *Store) Initialize(ctx context.Context) ([]Entry, bool) {
	entries := s.loadEntries(ctx)
	incognito := s.loadIncognito(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = entries
	s.incognito = incognito

	s.log.Debug().
		Int("entries", len(entries)).
		Bool("incognito", incognito).
		Msg("history loaded")

	return slices.Clone(entries), incognito
}

func (s *Store) loadEntries(ctx context.Context) []Entry {
	raw, err := s.read(ctx, s.listKey)
	if err != nil || raw == "" {
		return []Entry{}
	}

	entries, err := DecodeList(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.listKey).Msg("history list unreadable, starting empty")
		return []Entry{}
	}

	entries, dropped := normalize(entries, s.maxEntries)
	if dropped > 0 {
		s.log.Warn().Int("dropped", dropped).Str("key", s.listKey).Msg("discarded invalid history entries")
	}

	return entries
}

func (s *Store) loadIncognito(ctx context.Context) bool {
	raw, err := s.read(ctx, s.incognitoKey)
	if err != nil || raw == "" {
		return false
	}

	switch raw {
	case "true":
		return true
	case "false":
		return false
	default:
		s.log.Warn().Str("key", s.incognitoKey).Str("value", raw).Msg("incognito flag unreadable, defaulting to off")
		return false
	}
}

// read fetches key, logging any fault other than a missing key.
func (s *Store) read(ctx context.Context, key string) (string, error) {
	var raw string
	err := guard(func() error {
		var err error
		raw, err = s.backend.Get(ctx, key)
		return err
	})
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		s.log.Warn().Err(err).Str("key", key).Msg("history read failed")
	}
	return raw, err
}

// Add records a search. Blank text is ignored and reports false. An existing
// entry with the same trimmed text is replaced by the new one at the front,
// and the list is truncated to the configured maximum.
//
// In incognito mode the entry is added to the in-memory list for the rest of
// the session but the list is not written to the backend.
func (s *Store) Add(text string, kind Kind, imageRef string) (Entry, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Entry{}, false
	}
	if !kind.valid() {
		kind = KindText
	}
	if kind != KindImage {
		imageRef = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().Truncate(time.Millisecond)
	if len(s.entries) > 0 && ts.Before(s.entries[0].Timestamp) {
		ts = s.entries[0].Timestamp
	}

	entry := Entry{
		ID:        s.newID(),
		Text:      text,
		Timestamp: ts,
		Kind:      kind,
		ImageRef:  imageRef,
	}

	next := make([]Entry, 0, s.maxEntries)
	next = append(next, entry)
	for _, e := range s.entries {
		if len(next) == s.maxEntries {
			break
		}
		if e.Text == text {
			continue
		}
		next = append(next, e)
	}

	s.entries = next
	s.persistListLocked()

	return entry, true
}

// Remove deletes the entry with the given id. It reports whether an entry was
// removed; removing an unknown id is not an error.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
	if idx < 0 {
		return false
	}

	s.entries = slices.Delete(slices.Clone(s.entries), idx, idx+1)
	s.persistListLocked()
	return true
}

// Clear empties the list and deletes the persisted list key.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = []Entry{}
	s.writer.enqueue(writeOp{key: s.listKey, delete: true})
}

// SetIncognito updates the flag and always persists it. Turning incognito off
// does not write entries added while it was on; they are written by the next
// list mutation.
func (s *Store) SetIncognito(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.incognito = on
	s.writer.enqueue(writeOp{key: s.incognitoKey, value: strconv.FormatBool(on)})
}

// Entries returns a copy of the current list, most recent first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Incognito returns the current incognito flag.
func (s *Store) Incognito() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.incognito
}

// MaxEntries returns the configured list bound.
func (s *Store) MaxEntries() int {
	return s.maxEntries
}

// Flush waits until all queued writes have reached the backend.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

// Close flushes queued writes and stops the background writer.
func (s *Store) Close(ctx context.Context) error {
	return s.writer.Close(ctx)
}

func (s *Store) persistListLocked() {
	if s.incognito {
		return
	}

	raw, err := encodeEntries(s.entries)
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.listKey).Msg("history list not persisted")
		return
	}

	s.writer.enqueue(writeOp{key: s.listKey, value: raw})
}

// newEntryID returns a time-ordered UUIDv7. The version 7 layout carries a
// millisecond timestamp, a sub-millisecond counter and random bits, so ids
// stay unique under rapid insertion within one clock tick.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return randid.Stamped(time.Now(), 7)
	}
	return id.String()
}
