package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/jotlog/jotlog/internal/store"
)

// Classification is the canonical result of the entity/topic/person
// classifier.
type Classification struct {
	Entity string   `json:"entity"`
	Topics []string `json:"topics"`
	People []string `json:"people"`
}

// Client is the external AI collaborator. Only this request/response
// contract is part of the store's world; everything behind it is the
// provider's business.
type Client interface {
	FixGrammar(ctx context.Context, content string) (string, error)
	Summarize(ctx context.Context, content string) (string, error)
	Classify(ctx context.Context, content string, topics, people []string) (Classification, error)
}

// Settings keys consulted at call time so the user can rotate keys and
// tune prompts without restarting the service.
const (
	settingAPIKey         = "ai_api_key"
	settingPromptGrammar  = "prompt_grammar"
	settingPromptSummary  = "prompt_summary"
	settingPromptClassify = "prompt_classify"
)

const (
	defaultPromptGrammar = "Fix grammar and spelling in the following note. " +
		"Keep the meaning, tone and markdown formatting. Return only the corrected text.\n\n"
	defaultPromptSummary = "Summarize the following note in at most three sentences. " +
		"Return only the summary.\n\n"
	defaultPromptClassify = "Classify the following note. Return only JSON of the form " +
		`{"entity":"project|task|knowledge","topics":["..."],"people":["..."]}. ` +
		"Prefer reusing the existing topics and people listed.\n\n"
)

// AnthropicClient talks to an Anthropic-compatible messages API.
type AnthropicClient struct {
	http     *resty.Client
	model    string
	apiKey   string
	settings store.Settings
}

// NewAnthropicClient builds the client. The API key from the settings
// store wins over the configured one; prompt templates come from the
// settings store when present.
func NewAnthropicClient(baseURL, model, apiKey string, settings store.Settings) *AnthropicClient {
	return &AnthropicClient{
		http:     resty.New().SetBaseURL(baseURL),
		model:    model,
		apiKey:   apiKey,
		settings: settings,
	}
}

func (c *AnthropicClient) FixGrammar(ctx context.Context, content string) (string, error) {
	prompt, err := c.prompt(ctx, settingPromptGrammar, defaultPromptGrammar)
	if err != nil {
		return "", err
	}
	return c.complete(ctx, prompt+content)
}

func (c *AnthropicClient) Summarize(ctx context.Context, content string) (string, error) {
	prompt, err := c.prompt(ctx, settingPromptSummary, defaultPromptSummary)
	if err != nil {
		return "", err
	}
	return c.complete(ctx, prompt+content)
}

func (c *AnthropicClient) Classify(ctx context.Context, content string, topics, people []string) (Classification, error) {
	prompt, err := c.prompt(ctx, settingPromptClassify, defaultPromptClassify)
	if err != nil {
		return Classification{}, err
	}
	var b strings.Builder
	b.WriteString(prompt)
	if len(topics) > 0 {
		fmt.Fprintf(&b, "Existing topics: %s\n", strings.Join(topics, ", "))
	}
	if len(people) > 0 {
		fmt.Fprintf(&b, "Existing people: %s\n", strings.Join(people, ", "))
	}
	b.WriteString("\n")
	b.WriteString(content)

	raw, err := c.complete(ctx, b.String())
	if err != nil {
		return Classification{}, err
	}

	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var out Classification
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return Classification{}, fmt.Errorf("parse classification: %w", err)
	}
	return out, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) complete(ctx context.Context, prompt string) (string, error) {
	key, err := c.resolveKey(ctx)
	if err != nil {
		return "", err
	}

	var out messagesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", key).
		SetHeader("anthropic-version", "2023-06-01").
		SetBody(messagesRequest{
			Model:     c.model,
			MaxTokens: 1024,
			Messages:  []message{{Role: "user", Content: prompt}},
		}).
		SetResult(&out).
		SetError(&out).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("ai request: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("ai error: %s", out.Error.Message)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ai error: status %s", resp.Status())
	}
	if len(out.Content) == 0 {
		return "", fmt.Errorf("ai error: empty response")
	}
	return out.Content[0].Text, nil
}

func (c *AnthropicClient) resolveKey(ctx context.Context) (string, error) {
	if c.settings != nil {
		m, err := c.settings.Get(ctx)
		if err != nil {
			return "", err
		}
		if k := m[settingAPIKey]; k != "" {
			return k, nil
		}
	}
	if c.apiKey == "" {
		return "", fmt.Errorf("ai api key not configured")
	}
	return c.apiKey, nil
}

func (c *AnthropicClient) prompt(ctx context.Context, key, fallback string) (string, error) {
	if c.settings == nil {
		return fallback, nil
	}
	m, err := c.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	if p := m[key]; p != "" {
		if !strings.HasSuffix(p, "\n") {
			p += "\n\n"
		}
		return p, nil
	}
	return fallback, nil
}
