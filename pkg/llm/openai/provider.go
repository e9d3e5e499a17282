// Package openai talks to any OpenAI-compatible chat completion endpoint.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-quiz-runner/pkg/llm"

	"github.com/go-resty/resty/v2"
)

type Provider struct {
	endpoint string
	apiKey   string
	model    string
	client   *resty.Client
}

var _ llm.LLMProvider = (*Provider)(nil)

// NewProvider takes the full completion URL (".../v1/chat/completions");
// anything after a "#" is dropped.
func NewProvider(endpoint, apiKey, model string, timeout time.Duration) *Provider {
	if i := strings.Index(endpoint, "#"); i >= 0 {
		endpoint = endpoint[:i]
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Provider{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   resty.New().SetTimeout(timeout),
	}
}

// Request Payload Structure (OpenAI Compatible)
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
	Result  interface{} `json:"result"`
	Content interface{} `json:"content"`
	Data    interface{} `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: p.model, Temperature: 0.7}, options...)

	req := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{
			Model:       opts.Model,
			Messages:    history,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		})
	if p.apiKey != "" {
		req.SetAuthToken(p.apiKey)
	}

	resp, err := req.Post(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("cannot reach model endpoint: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("model endpoint HTTP %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("model endpoint returned invalid JSON: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("model endpoint error: %s", out.Error.Message)
	}
	return out.text()
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

// text finds the reply in the usual places: message content (plain or as
// a list of parts), legacy completion text, then top-level result fields.
func (r chatResponse) text() (string, error) {
	for _, c := range r.Choices {
		if c.Message != nil && len(c.Message.Content) > 0 {
			var s string
			if err := json.Unmarshal(c.Message.Content, &s); err == nil && strings.TrimSpace(s) != "" {
				return s, nil
			}
			var parts []struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(c.Message.Content, &parts); err == nil {
				var b strings.Builder
				for _, part := range parts {
					b.WriteString(part.Text)
				}
				if merged := strings.TrimSpace(b.String()); merged != "" {
					return merged, nil
				}
			}
		}
		if strings.TrimSpace(c.Text) != "" {
			return c.Text, nil
		}
	}
	for _, v := range []interface{}{r.Result, r.Content, r.Data} {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	return "", llm.ErrEmptyResponse
}
