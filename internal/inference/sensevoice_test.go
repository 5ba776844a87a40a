package inference

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audioai/pkg/log"
)

func TestNewSenseVoiceDefaults(t *testing.T) {
	sv := NewSenseVoice(Config{Endpoint: "http://sidecar:8000/"}, log.Nop())

	assert.Equal(t, "http://sidecar:8000", sv.cfg.Endpoint)
	assert.Equal(t, DefaultModelID, sv.cfg.ModelID)
	assert.Equal(t, DefaultDevice, sv.cfg.Device)
	assert.Positive(t, sv.cfg.Timeout)
}

func TestSenseVoiceInferenceUpload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF fake wav"), 0o600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inference", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "auto", r.FormValue("language"))
		assert.Equal(t, "false", r.FormValue("use_itn"))
		assert.Equal(t, "false", r.FormValue("ban_emo_unk"))
		assert.Equal(t, DefaultModelID, r.FormValue("model"))
		assert.Empty(t, r.FormValue("audio_url"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "clip.wav", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "RIFF fake wav", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"key":"clip","text":"<|en|><|HAPPY|><|Speech|><|woitn|>hi","emotion_probs":{"happy":0.9,"sad":0.1}}]}`))
	}))
	defer server.Close()

	sv := NewSenseVoice(Config{Endpoint: server.URL}, log.Nop())
	out, err := sv.Inference(context.Background(), Input{Path: path}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "<|en|><|HAPPY|><|Speech|><|woitn|>hi", out.Text)
	assert.InDelta(t, 0.9, out.EmotionProbs["happy"], 1e-9)
}

func TestSenseVoiceInferenceURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "https://cdn.example.com/a.mp3", r.FormValue("audio_url"))
		_, _, err := r.FormFile("file")
		assert.Error(t, err)
		_, _ = w.Write([]byte(`{"results":[{"text":"<|en|><|SAD|><|BGM|><|woitn|>","emotion_probs":{}}]}`))
	}))
	defer server.Close()

	sv := NewSenseVoice(Config{Endpoint: server.URL}, log.Nop())
	out, err := sv.Inference(context.Background(), Input{URL: "https://cdn.example.com/a.mp3"}, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out.Text, "SAD")
}

func TestSenseVoiceInferenceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unsupported audio",
			status: http.StatusUnprocessableEntity,
			body:   "cannot decode",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnsupportedAudio)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   "cuda oom",
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
				assert.Equal(t, "cuda oom", se.Body)
			},
		},
		{
			name:   "empty results",
			status: http.StatusOK,
			body:   `{"results":[]}`,
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "sensevoice returned no results")
			},
		},
		{
			name:   "bad json",
			status: http.StatusOK,
			body:   `{`,
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "decode response")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			sv := NewSenseVoice(Config{Endpoint: server.URL}, log.Nop())
			_, err := sv.Inference(context.Background(), Input{URL: "https://x/a.wav"}, DefaultOptions())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestSenseVoiceInferenceNoInput(t *testing.T) {
	sv := NewSenseVoice(Config{Endpoint: "http://127.0.0.1:1"}, log.Nop())
	_, err := sv.Inference(context.Background(), Input{}, DefaultOptions())
	assert.Error(t, err)
}

func TestSenseVoiceHealth(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "healthy", status: http.StatusOK},
		{name: "loading", status: http.StatusServiceUnavailable, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/health", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := NewSenseVoice(Config{Endpoint: server.URL}, log.Nop()).Health(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
