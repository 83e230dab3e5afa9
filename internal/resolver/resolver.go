// Package resolver turns raw form HTML into a canonical field to locator schema,
// consulting the form cache before asking a language model.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-applier/internal/formcache"
	"github.com/jonathan/job-applier/internal/llm"
	"github.com/jonathan/job-applier/internal/prompts"
	"github.com/jonathan/job-applier/internal/schemas"
	"github.com/jonathan/job-applier/internal/types"
)

// DefaultMaxChars bounds the HTML sent in one request.
const DefaultMaxChars = 350000

// SchemaTag delimits the structured block in the model response.
const SchemaTag = "form_schema"

// Resolver resolves forms. It is not safe for concurrent use when the cache is not.
type Resolver struct {
	client   llm.Client
	cache    formcache.Cache
	maxChars int
	logger   *zap.Logger
}

// New creates a Resolver. maxChars <= 0 selects DefaultMaxChars; a nil logger discards logs.
func New(client llm.Client, cache formcache.Cache, maxChars int, logger *zap.Logger) *Resolver {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{client: client, cache: cache, maxChars: maxChars, logger: logger}
}

// Resolve returns the schema for the form at url. A cached schema is returned
// as is, without checking it against html.
func (r *Resolver) Resolve(ctx context.Context, html, url string, shape types.Shape) (*types.FormSchema, error) {
	log := r.logger.With(zap.String("url", url), zap.String("shape", shape.Name))

	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, url)
		switch {
		case err != nil:
			log.Warn("form cache read failed, resolving with model", zap.Error(err))
		case ok:
			log.Debug("form schema cache hit")
			return cached, nil
		}
	}

	return r.resolve(ctx, log, html, url, shape)
}

// Refresh resolves the form with the model even when a schema is cached, and
// replaces the cached entry with the result.
func (r *Resolver) Refresh(ctx context.Context, html, url string, shape types.Shape) (*types.FormSchema, error) {
	log := r.logger.With(zap.String("url", url), zap.String("shape", shape.Name))
	log.Info("refreshing cached form schema")
	return r.resolve(ctx, log, html, url, shape)
}

func (r *Resolver) resolve(ctx context.Context, log *zap.Logger, html, url string, shape types.Shape) (*types.FormSchema, error) {
	prompt, err := BuildPrompt(Truncate(CleanHTML(html), r.maxChars), shape)
	if err != nil {
		return nil, err
	}

	log.Info("resolving form with model", zap.Int("prompt_chars", len(prompt)))
	responseText, err := r.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &ServiceError{
			Message: "failed to generate content from LLM",
			Cause:   err,
		}
	}

	schema, err := ParseResponse(responseText)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, url, *schema); err != nil {
			log.Warn("form cache write failed", zap.Error(err))
		}
	}

	log.Info("form resolved", zap.Int("fields", len(schema.Fields)), zap.Strings("required", schema.Required))
	return schema, nil
}

// BuildPrompt renders the resolve-form prompt for already cleaned and truncated html.
func BuildPrompt(html string, shape types.Shape) (string, error) {
	template, err := prompts.Get("forms.json", "resolve-form")
	if err != nil {
		return "", fmt.Errorf("failed to load resolve-form prompt: %w", err)
	}

	example, err := json.MarshalIndent(shape.Example, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s shape: %w", shape.Name, err)
	}

	return prompts.Format(template, map[string]string{
		"Shape": string(example),
		"HTML":  html,
	}), nil
}

// ParseResponse extracts and strictly decodes the tagged schema block.
// The block must be a JSON object of string locators plus an optional
// "required" string array; anything else is a ParseError.
func ParseResponse(text string) (*types.FormSchema, error) {
	block, ok := llm.ExtractTagged(text, SchemaTag)
	if !ok {
		return nil, &ParseError{Message: fmt.Sprintf("response has no <%s> block", SchemaTag)}
	}

	block = strings.TrimSpace(llm.CleanJSONBlock(block))
	if block == "" {
		return nil, &ParseError{Message: fmt.Sprintf("<%s> block is empty", SchemaTag)}
	}

	if err := schemas.ValidateFormSchema(block); err != nil {
		return nil, &ParseError{
			Message: "form schema failed validation",
			Cause:   err,
		}
	}

	var schema types.FormSchema
	if err := json.Unmarshal([]byte(block), &schema); err != nil {
		return nil, &ParseError{
			Message: "failed to parse JSON response",
			Cause:   err,
		}
	}

	return &schema, nil
}
