package config

const (
	SpeechProviderOpenAI     = "openai"
	SpeechProviderElevenLabs = "elevenlabs"
)

type SpeechConfig struct {
	Provider         string `yaml:"provider" env:"SPOAR_SPEECH_PROVIDER"`
	// Voice and Model fall back to the provider defaults when empty.
	Voice            string `yaml:"voice" env:"SPOAR_SPEECH_VOICE"`
	Model            string `yaml:"model"`
	OutputDir        string `yaml:"outputDir"`
	ElevenLabsAPIKey string `yaml:"-" env:"ELEVENLABS_API_KEY"`
}
