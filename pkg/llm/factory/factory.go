package factory

import (
	"context"
	"fmt"
	"time"

	"legal-aid-be/pkg/llm"
	"legal-aid-be/pkg/llm/huggingface"
	"legal-aid-be/pkg/llm/ollama"
	"legal-aid-be/pkg/llm/vertex"
)

type Config struct {
	Provider  string
	Model     string
	BaseURL   string
	APIKey    string
	ProjectID string
	Region    string
	Timeout   time.Duration
}

func NewLLMProvider(ctx context.Context, cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model, cfg.Timeout), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "vertex", "gemini":
		return vertex.NewVertexProvider(ctx, cfg.ProjectID, cfg.Region, cfg.Model, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
