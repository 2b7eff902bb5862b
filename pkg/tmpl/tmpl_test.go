package tmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	type captureData struct {
		Output string
	}

	tests := []struct {
		name    string
		tmpl    string
		data    any
		want    string
		wantErr bool
	}{
		{
			name: "simple substitution",
			tmpl: "imagesnap {{ .Output }}",
			data: captureData{Output: "/tmp/capture.jpg"},
			want: "imagesnap /tmp/capture.jpg",
		},
		{
			name: "no variables",
			tmpl: "whisper-stream --model base",
			data: nil,
			want: "whisper-stream --model base",
		},
		{
			name:    "missing field errors",
			tmpl:    "imagesnap {{ .Path }}",
			data:    captureData{},
			wantErr: true,
		},
		{
			name:    "missing map key errors",
			tmpl:    "{{ .Missing }}",
			data:    map[string]string{"Output": "x"},
			wantErr: true,
		},
		{
			name:    "invalid template syntax",
			tmpl:    "{{ .Output }",
			data:    captureData{},
			wantErr: true,
		},
		{
			name: "shq with spaces",
			tmpl: "fswebcam {{ .Output | shq }}",
			data: captureData{Output: "/home/me/My Photos/shot.jpg"},
			want: "fswebcam '/home/me/My Photos/shot.jpg'",
		},
		{
			name: "shq with single quotes",
			tmpl: "fswebcam {{ .Output | shq }}",
			data: captureData{Output: "/tmp/it's.jpg"},
			want: `fswebcam '/tmp/it'\''s.jpg'`,
		},
		{
			name: "shq with empty string",
			tmpl: "fswebcam {{ .Output | shq }}",
			data: captureData{},
			want: "fswebcam ''",
		},
		{
			name: "shq with special chars",
			tmpl: "fswebcam {{ .Output | shq }}",
			data: captureData{Output: "$(whoami) && rm -rf /"},
			want: "fswebcam '$(whoami) && rm -rf /'",
		},
		{
			name: "base and dir",
			tmpl: "cd {{ .Output | dir }} && cam {{ .Output | base }}",
			data: captureData{Output: "/data/captures/a.jpg"},
			want: "cd /data/captures && cam a.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
