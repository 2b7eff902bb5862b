package randid

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	for _, n := range []int{0, 1, 7, 32} {
		id := Generate(n)
		assert.Len(t, id, n)
		if n > 0 {
			assert.True(t, Valid(id), id)
		}
	}
}

func TestStamped(t *testing.T) {
	at := time.UnixMilli(1718000000123)

	id := Stamped(at, 7)
	prefix, suffix, ok := strings.Cut(id, "-")
	require.True(t, ok)
	assert.Equal(t, "1718000000123", prefix)
	assert.Len(t, suffix, 7)
	assert.True(t, Valid(suffix))
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "x7k2p9", want: true},
		{in: "", want: false},
		{in: "ABC", want: false},
		{in: "a-b", want: false},
		{in: "a b", want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Valid(tt.in), tt.in)
	}
}
