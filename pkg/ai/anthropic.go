package ai

import (
	"context"
	"fmt"
)

// AnthropicConfig placeholder for anthropic integration configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// AnthropicClient is a stub implementation that can be expanded once the SDK
// is adopted.
type AnthropicClient struct{}

// NewAnthropicClient constructs a new stub client.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return &AnthropicClient{}, nil
}

// Score is not yet implemented for Anthropic models.
func (a *AnthropicClient) Score(ctx context.Context, input ScoreInput) (ScoreResult, error) {
	return ScoreResult{}, fmt.Errorf("anthropic scorer not implemented")
}

// GenerateQuestions is not yet implemented for Anthropic models.
func (a *AnthropicClient) GenerateQuestions(ctx context.Context, input QuestionSetInput) ([]GeneratedQuestion, error) {
	return nil, fmt.Errorf("anthropic question generator not implemented")
}
