package judge

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"credence/internal/config"
)

// OpenAIBackend speaks the OpenAI chat-completion API. BaseURL may point
// at any compatible endpoint (local llama.cpp, vLLM, a proxy).
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

func NewOpenAIBackend(cfg config.Judge) (*OpenAIBackend, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s not set and no base_url configured", cfg.APIKeyEnv)
	}
	conf := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(conf),
		model:  cfg.Model,
	}, nil
}

func (o *OpenAIBackend) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
