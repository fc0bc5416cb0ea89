package speech

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type (
	ElevenLabsProvider struct {
		apiKey  string
		baseURL string
		voiceID string
		modelID string
		client  *http.Client
	}

	ElevenLabsConfig struct {
		APIKey  string
		BaseURL string
		VoiceID string
		ModelID string
	}
)

var (
	_ Provider = (*ElevenLabsProvider)(nil)
)

func NewElevenLabsProvider(cfg ElevenLabsConfig) *ElevenLabsProvider {
	p := &ElevenLabsProvider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		voiceID: cfg.VoiceID,
		modelID: cfg.ModelID,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	if p.baseURL == "" {
		p.baseURL = "https://api.elevenlabs.io"
	}
	if p.voiceID == "" {
		p.voiceID = "pMsXgVXv3BLzUgSXRplE"
	}
	if p.modelID == "" {
		p.modelID = "eleven_multilingual_v2"
	}
	return p
}

func (p *ElevenLabsProvider) Name() string { return "elevenlabs" }

// Synthesize calls POST {baseURL}/v1/text-to-speech/{voice}.
func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text string, opts Options) (*Result, error) {
	outputFormat, res := "mp3_44100_128", &Result{Format: "mp3", MimeType: "audio/mpeg"}
	if opts.Format == "opus" {
		outputFormat, res.Format, res.MimeType = "opus_48000_64", "ogg", "audio/ogg"
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		p.baseURL, url.PathEscape(firstNonEmpty(opts.Voice, p.voiceID)), outputFormat)

	audio, err := postAudio(ctx, p.client, endpoint, map[string]string{
		"xi-api-key": p.apiKey,
	}, map[string]any{
		"text":     text,
		"model_id": firstNonEmpty(opts.Model, p.modelID),
		"voice_settings": map[string]any{
			"stability":         0.5,
			"similarity_boost":  0.75,
			"style":             0.0,
			"use_speaker_boost": true,
		},
	})
	if err != nil {
		return nil, err
	}

	res.Audio = audio
	return res, nil
}
