package speech

import (
	"context"
	"io"
	"net/http"

	"github.com/habiliai/spoar/errors"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

type (
	OpenAIProvider struct {
		client *openai.Client
		model  string
		voice  string
	}

	OpenAIConfig struct {
		APIKey  string
		BaseURL string
		Model   string
		Voice   string
	}
)

var (
	_ Provider = (*OpenAIProvider)(nil)
)

// NewOpenAIProvider builds a provider on the OpenAI speech API. An empty
// BaseURL uses the default endpoint.
func NewOpenAIProvider(cfg OpenAIConfig, opts ...option.RequestOption) *OpenAIProvider {
	options := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(defaultTimeout),
	}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(append(options, opts...)...)

	p := &OpenAIProvider{
		client: &client,
		model:  cfg.Model,
		voice:  cfg.Voice,
	}
	if p.model == "" {
		p.model = openai.SpeechModelGPT4oMiniTTS
	}
	if p.voice == "" {
		p.voice = string(openai.AudioSpeechNewParamsVoiceAlloy)
	}
	return p
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Synthesize(ctx context.Context, text string, opts Options) (*Result, error) {
	format := opts.Format
	if format == "" {
		format = string(openai.AudioSpeechNewParamsResponseFormatMP3)
	}

	resp, err := p.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          firstNonEmpty(opts.Model, p.model),
		Voice:          openai.AudioSpeechNewParamsVoice(firstNonEmpty(opts.Voice, p.voice)),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormat(format),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "speech request failed")
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read speech response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("speech request failed with status %d: %s", resp.StatusCode, audio)
	}

	res := &Result{Audio: audio, Format: format, MimeType: "audio/mpeg"}
	switch format {
	case "opus":
		res.Format, res.MimeType = "ogg", "audio/ogg"
	case "wav":
		res.MimeType = "audio/wav"
	}
	return res, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
