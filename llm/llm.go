// Package llm wraps chat-completion model providers behind one interface.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/apiarylab/apiary-agent/config"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

type Client interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

type Options struct {
	Provider    string
	Model       string
	Temperature float32

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

func NewClient(cfg config.Config) (Client, error) {
	opts := Options{
		Provider:      cfg.LLM.Provider,
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		OllamaHost:    cfg.OllamaHost,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
	}

	switch opts.Provider {
	case config.ProviderOllama:
		return NewOllamaClient(opts), nil
	case config.ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		return NewOpenAIClient(opts), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", opts.Provider)
	}
}

// Translate renders text into the named target language using the chat
// model. The output is the bare translation with no commentary; an empty
// result is reported as an error so callers can fall back cleanly.
func Translate(ctx context.Context, client Client, text, targetLanguage string) (string, error) {
	messages := []Message{
		{
			Role: RoleSystem,
			Content: fmt.Sprintf(
				"You are a translator. Translate the user's message into %s. Reply with the translation only.",
				targetLanguage,
			),
		},
		{Role: RoleUser, Content: text},
	}

	translated, err := client.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", targetLanguage, err)
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		return "", fmt.Errorf("translate to %s: empty translation", targetLanguage)
	}
	return translated, nil
}
