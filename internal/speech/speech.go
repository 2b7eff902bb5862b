// Package speech turns a streaming speech-to-text command into query text.
//
// The configured command prints one transcript per line on stdout. Each line
// is the recognizer's current best guess and replaces the previous one.
package speech

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/lens/pkg/executil"
)

var (
	// ErrNotConfigured is returned when no speech command is configured.
	ErrNotConfigured = errors.New("no speech command configured")
	// ErrNoSpeech is returned when the command ends without a transcript.
	ErrNoSpeech = errors.New("no speech recognized")
)

// Recognizer starts listening sessions.
type Recognizer struct {
	exec    executil.Executor
	command string
	log     zerolog.Logger
}

// NewRecognizer creates a Recognizer for command.
func NewRecognizer(exec executil.Executor, command string, log zerolog.Logger) *Recognizer {
	return &Recognizer{exec: exec, command: command, log: log}
}

// Available reports whether a speech command is configured.
func (r *Recognizer) Available() bool {
	return strings.TrimSpace(r.command) != ""
}

// Start runs the speech command and begins streaming transcripts.
func (r *Recognizer) Start(ctx context.Context) (*Session, error) {
	if !r.Available() {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()

	s := &Session{
		cancel:      cancel,
		transcripts: make(chan string, 16),
		done:        make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := executil.ShellStream(ctx, r.exec, pw, io.Discard, r.command)
		_ = pw.CloseWithError(err)

		s.mu.Lock()
		s.runErr = err
		s.mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		defer close(s.transcripts)
		s.read(pr)
	}()

	go func() {
		wg.Wait()
		cancel()
		close(s.done)
	}()

	r.log.Debug().Str("command", r.command).Msg("listening")
	return s, nil
}

// Session is one listening session.
type Session struct {
	cancel      context.CancelFunc
	transcripts chan string
	done        chan struct{}

	mu      sync.Mutex
	last    string
	runErr  error
	stopped bool
}

// Transcripts streams each transcript as it arrives. Transcripts are dropped
// when the receiver falls behind; Wait and Stop always report the latest one.
// The channel is closed when the command exits.
func (s *Session) Transcripts() <-chan string {
	return s.transcripts
}

func (s *Session) read(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		s.mu.Lock()
		s.last = line
		s.mu.Unlock()

		select {
		case s.transcripts <- line:
		default:
		}
	}
	// Drain so the writer never blocks after a scan error.
	_, _ = io.Copy(io.Discard, r)
}

// Stop ends the session and returns the latest transcript.
func (s *Session) Stop() (string, error) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	return s.Wait()
}

// Wait blocks until the command exits and returns the latest transcript.
func (s *Session) Wait() (string, error) {
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runErr != nil && !s.stopped {
		return s.last, s.runErr
	}
	if s.last == "" {
		return "", ErrNoSpeech
	}
	return s.last, nil
}
