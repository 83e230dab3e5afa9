// Package llm wraps the language model used to resolve forms.
package llm

// ModelTier selects a model by the kind of work asked of it.
type ModelTier string

// TierStandard is used for structured output such as form schemas.
const TierStandard ModelTier = "standard"

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Config holds the model configuration for the application
type Config struct {
	Provider        Provider
	Models          map[ModelTier]string
	Temperature     float32
	MaxOutputTokens int32
}

// DefaultConfig returns the Gemini configuration. Temperature is kept low so
// the same form resolves to the same locators.
func DefaultConfig() *Config {
	return &Config{
		Provider:        ProviderGemini,
		Models:          map[ModelTier]string{TierStandard: "gemini-2.5-flash"},
		Temperature:     0.2,
		MaxOutputTokens: 2048,
	}
}

// GetModel returns the model name for tier, falling back to the standard
// model. It is empty when nothing is configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	return c.Models[TierStandard]
}

// WithModel returns a copy of c using model for tier. An empty model leaves c's choice in place.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := *c
	next.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		next.Models[k] = v
	}
	if model != "" {
		next.Models[tier] = model
	}
	return &next
}
