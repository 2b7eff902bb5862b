package speech

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/lens/pkg/executil"
)

func TestRecognizer_NotConfigured(t *testing.T) {
	r := NewRecognizer(&executil.RecordingExecutor{}, "", zerolog.Nop())

	assert.False(t, r.Available())
	_, err := r.Start(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestSession_Wait(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{"sh": []byte("red\nred running\n\nred running shoes\n")},
	}
	r := NewRecognizer(exec, "whisper-stream", zerolog.Nop())

	s, err := r.Start(context.Background())
	require.NoError(t, err)

	text, err := s.Wait()
	require.NoError(t, err)
	assert.Equal(t, "red running shoes", text)

	var got []string
	for line := range s.Transcripts() {
		got = append(got, line)
	}
	assert.Equal(t, []string{"red", "red running", "red running shoes"}, got)

	cmds := exec.Recorded()
	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"-c", "whisper-stream"}, cmds[0].Args)
}

func TestSession_NoSpeech(t *testing.T) {
	r := NewRecognizer(&executil.RecordingExecutor{}, "whisper-stream", zerolog.Nop())

	s, err := r.Start(context.Background())
	require.NoError(t, err)

	_, err = s.Wait()
	require.ErrorIs(t, err, ErrNoSpeech)
}

func TestSession_CommandFails(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{"sh": []byte("hel\n")},
		Errors:  map[string]error{"sh": errors.New("exit status 2")},
	}
	r := NewRecognizer(exec, "whisper-stream", zerolog.Nop())

	s, err := r.Start(context.Background())
	require.NoError(t, err)

	text, err := s.Wait()
	require.Error(t, err)
	assert.Equal(t, "hel", text)
}

// listeningExecutor writes one transcript and then blocks until canceled.
type listeningExecutor struct {
	started chan struct{}
}

func (e *listeningExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return nil, errors.New("not supported")
}

func (e *listeningExecutor) RunStream(ctx context.Context, stdout, stderr io.Writer, cmd string, args ...string) error {
	_, _ = io.WriteString(stdout, "snow leopard\n")
	close(e.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestSession_Stop(t *testing.T) {
	exec := &listeningExecutor{started: make(chan struct{})}
	r := NewRecognizer(exec, "whisper-stream", zerolog.Nop())

	s, err := r.Start(context.Background())
	require.NoError(t, err)

	<-exec.started
	assert.Equal(t, "snow leopard", <-s.Transcripts())

	text, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, "snow leopard", text)
}
