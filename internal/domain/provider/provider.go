// Package provider describes the LLM providers paperdigest can summarize with.
package provider

import (
	"sort"
	"strings"
)

// Kind selects the transport used to talk to a provider.
type Kind string

// Transport kinds.
const (
	KindOpenAI      Kind = "openai" // OpenAI and any OpenAI-compatible endpoint
	KindAnthropic   Kind = "anthropic"
	KindOllama      Kind = "ollama"
	KindHuggingFace Kind = "huggingface"
)

// Info is the static description of a known provider.
type Info struct {
	Name         string
	DisplayName  string
	Kind         Kind
	Models       []string
	DefaultModel string
	BaseURL      string
	EnvKey       string
	NeedsAPIKey  bool
}

var registry = map[string]Info{
	"openai": {
		Name:         "openai",
		DisplayName:  "OpenAI",
		Kind:         KindOpenAI,
		Models:       []string{"gpt-4o-mini", "gpt-4o", "gpt-4", "gpt-3.5-turbo"},
		DefaultModel: "gpt-4o-mini",
		BaseURL:      "https://api.openai.com/v1",
		EnvKey:       "OPENAI_API_KEY",
		NeedsAPIKey:  true,
	},
	"anthropic": {
		Name:         "anthropic",
		DisplayName:  "Anthropic",
		Kind:         KindAnthropic,
		Models:       []string{"claude-sonnet-4-20250514", "claude-3-5-haiku-20241022"},
		DefaultModel: "claude-3-5-haiku-20241022",
		BaseURL:      "https://api.anthropic.com",
		EnvKey:       "ANTHROPIC_API_KEY",
		NeedsAPIKey:  true,
	},
	"groq": {
		Name:         "groq",
		DisplayName:  "Groq",
		Kind:         KindOpenAI,
		Models:       []string{"llama-3.1-70b-versatile", "llama-3.1-8b-instant", "mixtral-8x7b-32768"},
		DefaultModel: "llama-3.1-8b-instant",
		BaseURL:      "https://api.groq.com/openai/v1",
		EnvKey:       "GROQ_API_KEY",
		NeedsAPIKey:  true,
	},
	"openrouter": {
		Name:         "openrouter",
		DisplayName:  "OpenRouter",
		Kind:         KindOpenAI,
		Models:       []string{"openai/gpt-4o-mini", "meta-llama/llama-3.1-8b-instruct"},
		DefaultModel: "openai/gpt-4o-mini",
		BaseURL:      "https://openrouter.ai/api/v1",
		EnvKey:       "OPENROUTER_API_KEY",
		NeedsAPIKey:  true,
	},
	"ollama": {
		Name:         "ollama",
		DisplayName:  "Ollama (local)",
		Kind:         KindOllama,
		Models:       []string{"llama3.1", "llama3.2", "mistral", "phi3"},
		DefaultModel: "llama3.1",
		BaseURL:      "http://localhost:11434",
	},
	"huggingface": {
		Name:         "huggingface",
		DisplayName:  "HuggingFace",
		Kind:         KindHuggingFace,
		Models:       []string{"facebook/bart-large-cnn"},
		DefaultModel: "facebook/bart-large-cnn",
		BaseURL:      "https://api-inference.huggingface.co",
		EnvKey:       "HUGGINGFACE_API_KEY",
		NeedsAPIKey:  true,
	},
}

// Lookup returns the registry entry for name.
func Lookup(name string) (Info, bool) {
	info, ok := registry[strings.ToLower(name)]
	return info, ok
}

// Names returns all known provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// maxMaskRunes caps the number of mask characters.
const maxMaskRunes = 20

// MaskKey hides an API key for display, keeping the first and last four characters.
func MaskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	n := len(key) - 8
	if n > maxMaskRunes {
		n = maxMaskRunes
	}
	return key[:4] + strings.Repeat("•", n) + key[len(key)-4:]
}

// Status is a configured provider as shown to API clients.
type Status struct {
	Info
	Model      string
	MaskedKey  string
	Configured bool
	Active     bool
}

// NewStatus describes a configured provider.
func NewStatus(info Info, model, apiKey string, active bool) Status {
	if model == "" {
		model = info.DefaultModel
	}
	return Status{
		Info:       info,
		Model:      model,
		MaskedKey:  MaskKey(apiKey),
		Configured: !info.NeedsAPIKey || apiKey != "",
		Active:     active,
	}
}
