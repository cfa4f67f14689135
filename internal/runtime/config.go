package runtime

import (
	"github.com/mitchellh/mapstructure"
)

// Per-type views over a node's raw config map. Decoding is permissive:
// unknown keys are ignored and missing keys take the documented defaults, so
// a half-configured node still executes (and degrades) instead of failing
// the whole run.

type inputConfig struct {
	Key string `mapstructure:"key"`
}

type promptConfig struct {
	Template string `mapstructure:"template"`
}

type modelConfig struct {
	Prompt    string `mapstructure:"prompt"`
	Model     string `mapstructure:"model"`
	WebSearch bool   `mapstructure:"webSearch"`
	SerpKey   string `mapstructure:"serpKey"`
}

type ragConfig struct {
	FileName       string `mapstructure:"fileName"`
	EmbeddingModel string `mapstructure:"embeddingModel"`
}

func decodeInputConfig(raw map[string]any) inputConfig {
	cfg := inputConfig{Key: "input"}
	decode(raw, &cfg)
	if cfg.Key == "" {
		cfg.Key = "input"
	}
	return cfg
}

func decodePromptConfig(raw map[string]any) promptConfig {
	var cfg promptConfig
	decode(raw, &cfg)
	return cfg
}

func decodeModelConfig(raw map[string]any) modelConfig {
	cfg := modelConfig{Model: "gpt-3.5-turbo"}
	decode(raw, &cfg)
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	return cfg
}

func decodeRagConfig(raw map[string]any) ragConfig {
	cfg := ragConfig{EmbeddingModel: "text-embedding-3-large"}
	decode(raw, &cfg)
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-large"
	}
	return cfg
}

func decode(raw map[string]any, out any) {
	if raw == nil {
		return
	}
	// WeaklyTypedInput tolerates JSON round trips that turn bools into
	// strings and numbers into float64.
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return
	}
	_ = dec.Decode(raw)
}
