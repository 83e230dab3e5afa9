package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrBlocked is returned when the provider refuses the prompt or withholds the answer.
var ErrBlocked = errors.New("response blocked by provider")

// Client generates text from a prompt.
type Client interface {
	// GenerateContent sends prompt to the model configured for tier and returns its text.
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates the client for config's provider. A nil config selects DefaultConfig.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// GeminiClient talks to Google Gemini. Models are built once per tier.
type GeminiClient struct {
	client *genai.Client
	config *Config

	mu     sync.Mutex
	models map[ModelTier]*genai.GenerativeModel
}

// NewGeminiClient creates a Gemini client authenticated with apiKey.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
		models: make(map[ModelTier]*genai.GenerativeModel),
	}, nil
}

func (c *GeminiClient) model(tier ModelTier) (*genai.GenerativeModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.models[tier]; ok {
		return m, nil
	}
	name := c.config.GetModel(tier)
	if name == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	m := c.client.GenerativeModel(name)
	m.SetTemperature(c.config.Temperature)
	if c.config.MaxOutputTokens > 0 {
		m.SetMaxOutputTokens(c.config.MaxOutputTokens)
	}
	c.models[tier] = m
	return m, nil
}

// GenerateContent implements Client.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	m, err := c.model(tier)
	if err != nil {
		return "", err
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// responseText joins the text parts of the first candidate. A response cut
// short by the token limit is still returned; the caller's parser decides
// whether it is usable.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("empty response")
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("%w: prompt %s", ErrBlocked, fb.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety || candidate.FinishReason == genai.FinishReasonRecitation {
		return "", fmt.Errorf("%w: finish reason %s", ErrBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("no content in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return sb.String(), nil
}
