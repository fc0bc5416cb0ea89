package speech_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/habiliai/spoar/config"
	"github.com/habiliai/spoar/errors"
	"github.com/habiliai/spoar/speech"
	"github.com/openai/openai-go/v2/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path   string
	query  string
	header http.Header
	body   map[string]any
}

func audioServer(t *testing.T, status int, payload string) (*httptest.Server, *capturedRequest) {
	t.Helper()

	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.query = r.URL.RawQuery
		captured.header = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func TestOpenAIProvider(t *testing.T) {
	server, captured := audioServer(t, http.StatusOK, "ID3-audio")
	p := speech.NewOpenAIProvider(speech.OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL})

	res, err := p.Synthesize(context.Background(), "The answer is 200.", speech.Options{})
	require.NoError(t, err)

	assert.Equal(t, []byte("ID3-audio"), res.Audio)
	assert.Equal(t, "mp3", res.Format)
	assert.Equal(t, "audio/mpeg", res.MimeType)
	assert.Equal(t, "/audio/speech", captured.path)
	assert.Equal(t, "Bearer sk-test", captured.header.Get("Authorization"))
	assert.Equal(t, map[string]any{
		"model":           "gpt-4o-mini-tts",
		"input":           "The answer is 200.",
		"voice":           "alloy",
		"response_format": "mp3",
	}, captured.body)

	res, err = p.Synthesize(context.Background(), "hi", speech.Options{Voice: "nova", Model: "tts-1", Format: "opus"})
	require.NoError(t, err)
	assert.Equal(t, "ogg", res.Format)
	assert.Equal(t, "audio/ogg", res.MimeType)
	assert.Equal(t, "nova", captured.body["voice"])
	assert.Equal(t, "tts-1", captured.body["model"])
	assert.Equal(t, "opus", captured.body["response_format"])
}

func TestElevenLabsProvider(t *testing.T) {
	server, captured := audioServer(t, http.StatusOK, "mp3-bytes")
	p := speech.NewElevenLabsProvider(speech.ElevenLabsConfig{APIKey: "xi-test", BaseURL: server.URL, VoiceID: "voice-1"})

	res, err := p.Synthesize(context.Background(), "hello", speech.Options{})
	require.NoError(t, err)

	assert.Equal(t, []byte("mp3-bytes"), res.Audio)
	assert.Equal(t, "mp3", res.Format)
	assert.Equal(t, "/v1/text-to-speech/voice-1", captured.path)
	assert.Equal(t, "output_format=mp3_44100_128", captured.query)
	assert.Equal(t, "xi-test", captured.header.Get("xi-api-key"))
	assert.Equal(t, "hello", captured.body["text"])
	assert.Equal(t, "eleven_multilingual_v2", captured.body["model_id"])
}

func TestProviderErrorStatus(t *testing.T) {
	t.Run("openai", func(t *testing.T) {
		server, captured := audioServer(t, http.StatusUnauthorized, `{"error":{"message":"invalid key"}}`)
		p := speech.NewOpenAIProvider(speech.OpenAIConfig{APIKey: "bad", BaseURL: server.URL}, option.WithMaxRetries(0))

		_, err := p.Synthesize(context.Background(), "hi", speech.Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
		assert.Equal(t, "/audio/speech", captured.path)
	})

	t.Run("elevenlabs", func(t *testing.T) {
		server, _ := audioServer(t, http.StatusUnauthorized, `{"detail":"invalid key"}`)
		p := speech.NewElevenLabsProvider(speech.ElevenLabsConfig{APIKey: "bad", BaseURL: server.URL})

		_, err := p.Synthesize(context.Background(), "hi", speech.Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
		assert.Contains(t, err.Error(), "invalid key")
	})
}

func TestNew(t *testing.T) {
	p, err := speech.New(config.SpeechConfig{Provider: config.SpeechProviderOpenAI}, "sk")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = speech.New(config.SpeechConfig{Provider: config.SpeechProviderOpenAI}, "")
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))

	p, err = speech.New(config.SpeechConfig{Provider: config.SpeechProviderElevenLabs, ElevenLabsAPIKey: "xi"}, "")
	require.NoError(t, err)
	assert.Equal(t, "elevenlabs", p.Name())

	_, err = speech.New(config.SpeechConfig{Provider: "espeak"}, "sk")
	assert.True(t, errors.Is(err, errors.ErrUnsupportedProvider))
}

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio")
	sink := speech.NewFileSink(dir)

	path, err := sink.Write(&speech.Result{Audio: []byte("abc"), Format: "mp3"})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".mp3", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	_, err = sink.Write(&speech.Result{})
	assert.Error(t, err)
}
