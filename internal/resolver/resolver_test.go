package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/job-applier/internal/formcache"
	"github.com/jonathan/job-applier/internal/llm"
	"github.com/jonathan/job-applier/internal/types"
)

// stubClient returns a canned response and records every prompt.
type stubClient struct {
	response string
	err      error
	prompts  []string
	tiers    []llm.ModelTier
}

func (s *stubClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	s.prompts = append(s.prompts, prompt)
	s.tiers = append(s.tiers, tier)
	return s.response, s.err
}

func (s *stubClient) Close() error { return nil }

// failingCache errors on every call.
type failingCache struct{}

func (failingCache) Get(context.Context, string) (*types.FormSchema, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Put(context.Context, string, types.FormSchema) error {
	return errors.New("cache down")
}

const formHTML = `<form><label>Email *</label><input id="email" required><input type="file" name="cv"></form>`

const goodResponse = "Here you go.\n<form_schema>\n{\"email\": \"#email\", \"cv\": \"input[name=cv]\", \"cover_letter\": \"\", \"required\": [\"email\"]}\n</form_schema>\n<explanation>Email is starred.</explanation>"

func TestResolve_CallsModelThenCaches(t *testing.T) {
	ctx := context.Background()
	client := &stubClient{response: goodResponse}
	cache := formcache.NewMemory()
	r := New(client, cache, 0, zaptest.NewLogger(t))

	schema, err := r.Resolve(ctx, formHTML, "https://acme.example.com/apply", types.FullFormShape())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"email": "#email", "cv": "input[name=cv]", "cover_letter": ""}, schema.Fields)
	assert.Equal(t, []string{"email"}, schema.Required)
	assert.Len(t, client.prompts, 1)
	assert.Equal(t, []llm.ModelTier{llm.TierStandard}, client.tiers)

	cached, ok, err := cache.Get(ctx, "https://acme.example.com/apply")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, *schema, *cached)
}

func TestResolve_CacheHitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	client := &stubClient{response: goodResponse}
	r := New(client, formcache.NewMemory(), 0, zaptest.NewLogger(t))

	first, err := r.Resolve(ctx, formHTML, "https://acme.example.com/apply", types.FullFormShape())
	require.NoError(t, err)

	// Different html and shape: the cached entry still wins.
	second, err := r.Resolve(ctx, "<form></form>", "https://acme.example.com/apply", types.QuickApplyShape())
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
	assert.Len(t, client.prompts, 1, "second resolve must not call the model")
}

func TestRefresh_ReplacesCachedSchema(t *testing.T) {
	ctx := context.Background()
	url := "https://acme.example.com/apply"
	cache := formcache.NewMemory()
	require.NoError(t, cache.Put(ctx, url, types.FormSchema{Fields: map[string]string{"email": "#stale"}}))

	client := &stubClient{response: goodResponse}
	r := New(client, cache, 0, zaptest.NewLogger(t))

	schema, err := r.Refresh(ctx, formHTML, url, types.FullFormShape())
	require.NoError(t, err)
	assert.Equal(t, "#email", schema.Fields["email"])
	assert.Len(t, client.prompts, 1, "refresh must call the model despite the cached entry")

	cached, ok, err := cache.Get(ctx, url)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "#email", cached.Fields["email"])

	again, err := r.Resolve(ctx, formHTML, url, types.FullFormShape())
	require.NoError(t, err)
	assert.Equal(t, *schema, *again)
	assert.Len(t, client.prompts, 1)
}

func TestRefresh_FailureKeepsCachedSchema(t *testing.T) {
	ctx := context.Background()
	url := "https://acme.example.com/apply"
	cache := formcache.NewMemory()
	require.NoError(t, cache.Put(ctx, url, types.FormSchema{Fields: map[string]string{"email": "#kept"}}))

	r := New(&stubClient{response: "no block here"}, cache, 0, zaptest.NewLogger(t))

	_, err := r.Refresh(ctx, formHTML, url, types.FullFormShape())
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)

	cached, ok, err := cache.Get(ctx, url)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "#kept", cached.Fields["email"])
}

func TestResolve_ServiceError(t *testing.T) {
	cause := errors.New("deadline exceeded")
	r := New(&stubClient{err: cause}, formcache.NewMemory(), 0, zaptest.NewLogger(t))

	_, err := r.Resolve(context.Background(), formHTML, "https://a", types.FullFormShape())
	require.Error(t, err)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.ErrorIs(t, err, cause)
}

func TestResolve_ParseErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	cache := formcache.NewMemory()
	r := New(&stubClient{response: "no block here"}, cache, 0, zaptest.NewLogger(t))

	_, err := r.Resolve(ctx, formHTML, "https://a", types.FullFormShape())
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Zero(t, cache.Len())
}

func TestResolve_CacheFailuresAreNotFatal(t *testing.T) {
	client := &stubClient{response: goodResponse}
	r := New(client, failingCache{}, 0, zaptest.NewLogger(t))

	schema, err := r.Resolve(context.Background(), formHTML, "https://a", types.FullFormShape())
	require.NoError(t, err)
	assert.Equal(t, "#email", schema.Fields["email"])
	assert.Len(t, client.prompts, 1)
}

func TestResolve_NilCache(t *testing.T) {
	client := &stubClient{response: goodResponse}
	r := New(client, nil, 0, nil)

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(context.Background(), formHTML, "https://a", types.FullFormShape())
		require.NoError(t, err)
	}
	assert.Len(t, client.prompts, 2)
}

func TestResolve_TruncatesHTML(t *testing.T) {
	client := &stubClient{response: goodResponse}
	r := New(client, nil, 100, zaptest.NewLogger(t))

	huge := "<form>" + strings.Repeat("<input name=\"x\">", 1000) + "<input id=\"tail-marker\"></form>"
	_, err := r.Resolve(context.Background(), huge, "https://a", types.FullFormShape())
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	assert.NotContains(t, client.prompts[0], "tail-marker")
	assert.Contains(t, client.prompts[0], "<form>")
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(`<form id="f"></form>`, types.QuickApplyShape())
	require.NoError(t, err)

	assert.Contains(t, prompt, `<form id="f"></form>`)
	assert.Contains(t, prompt, `"resume": "#resume-upload-input"`)
	assert.Contains(t, prompt, `"required": []`)
	assert.Contains(t, prompt, "<form_schema></form_schema>")
	assert.NotContains(t, prompt, "{{.")
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *types.FormSchema
	}{
		{
			name:  "plain block",
			input: `<form_schema>{"email": "#e", "required": ["email"]}</form_schema>`,
			expected: &types.FormSchema{
				Fields:   map[string]string{"email": "#e"},
				Required: []string{"email"},
			},
		},
		{
			name:  "fenced block",
			input: "<form_schema>\n```json\n{\"phone\": \"#p\"}\n```\n</form_schema>",
			expected: &types.FormSchema{
				Fields:   map[string]string{"phone": "#p"},
				Required: []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseResponse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no block", `{"email": "#e"}`},
		{"unterminated block", `<form_schema>{"email": "#e"}`},
		{"empty block", `<form_schema>  </form_schema>`},
		{"python dict", `<form_schema>{'email': '#e', 'required': ['email']}</form_schema>`},
		{"expression", `<form_schema>__import__('os').system('true')</form_schema>`},
		{"array", `<form_schema>["#e"]</form_schema>`},
		{"non-string locator", `<form_schema>{"email": 3}</form_schema>`},
		{"required not array", `<form_schema>{"required": "email"}</form_schema>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.input)
			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}
