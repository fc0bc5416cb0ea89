// Package speech turns answers into audio through a text-to-speech API.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/habiliai/spoar/config"
	"github.com/habiliai/spoar/errors"
)

const defaultTimeout = 30 * time.Second

type (
	Provider interface {
		Name() string
		Synthesize(ctx context.Context, text string, opts Options) (*Result, error)
	}

	// Options override the provider defaults when set.
	Options struct {
		Voice  string
		Model  string
		Format string
	}

	Result struct {
		Audio []byte
		// Format is the file extension without the dot.
		Format   string
		MimeType string
	}
)

// New builds the provider named in cfg. openAIAPIKey is used by the openai
// provider.
func New(cfg config.SpeechConfig, openAIAPIKey string) (Provider, error) {
	switch cfg.Provider {
	case config.SpeechProviderOpenAI:
		if openAIAPIKey == "" {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "OPENAI_API_KEY is required for speech")
		}
		return NewOpenAIProvider(OpenAIConfig{APIKey: openAIAPIKey, Model: cfg.Model, Voice: cfg.Voice}), nil
	case config.SpeechProviderElevenLabs:
		if cfg.ElevenLabsAPIKey == "" {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "ELEVENLABS_API_KEY is required for speech")
		}
		return NewElevenLabsProvider(ElevenLabsConfig{APIKey: cfg.ElevenLabsAPIKey, VoiceID: cfg.Voice, ModelID: cfg.Model}), nil
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedProvider, "speech provider %q", cfg.Provider)
	}
}

// postAudio sends body as JSON and returns the raw response bytes. It serves
// ElevenLabs, which has no Go client.
func postAudio(ctx context.Context, client *http.Client, url string, headers map[string]string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode speech request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create speech request")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "speech request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read speech response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("speech request failed with status %d: %s", resp.StatusCode, data)
	}
	return data, nil
}
