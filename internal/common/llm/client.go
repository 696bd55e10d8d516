// Package llm is a minimal client for OpenAI-compatible chat completion APIs.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apperrors "edudata-explorer/internal/common/errors"
	commonhttp "edudata-explorer/internal/common/http"
	"edudata-explorer/internal/common/logger"
)

const TaskType = "completion"

var ErrMissingAPIKey = stderrors.New("completion API key not configured")

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// CompletionRequest is one prompt. System is optional.
type CompletionRequest struct {
	System    string
	Prompt    string
	MaxTokens int
}

type Completion struct {
	Text             string `json:"text"`
	Model            string `json:"model"`
	FinishReason     string `json:"finishReason"`
	PromptTokens     int64  `json:"promptTokens"`
	CompletionTokens int64  `json:"completionTokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type Client struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func NewClient(config *Config, client *commonhttp.Client, log logger.Logger) *Client {
	if client == nil {
		client = commonhttp.NewClient(config.Timeout)
	}
	return &Client{
		config: config,
		client: client,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Complete sends one chat completion request and returns the best choice,
// trimmed. Every failure is an UPSTREAM_ERROR; nothing is retried.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if c.config.APIKey == "" {
		return nil, apperrors.NewUpstreamError("completion request failed", ErrMissingAPIKey)
	}

	messages := make([]message, 0, 2)
	if req.System != "" {
		messages = append(messages, message{Role: "system", Content: req.System})
	}
	messages = append(messages, message{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:     c.config.Model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, apperrors.NewUpstreamError("completion request failed", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewUpstreamError("completion request failed", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	c.logger.Debug("sending completion request", map[string]interface{}{
		"model":       c.config.Model,
		"promptChars": len(req.Prompt),
		"maxTokens":   req.MaxTokens,
	})

	resp, err := c.client.DoWithContext(ctx, httpReq)
	if err != nil {
		return nil, apperrors.NewUpstreamError("completion request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamError("completion request failed", err).WithStatus(resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(gjson.GetBytes(raw, "error.message").String())
		if msg == "" {
			msg = resp.Status
		}
		return nil, apperrors.NewUpstreamError("completion provider returned an error", stderrors.New(msg)).WithStatus(resp.StatusCode)
	}

	if !gjson.ValidBytes(raw) {
		return nil, apperrors.NewUpstreamError("malformed completion response", stderrors.New("response body is not valid JSON"))
	}
	parsed := gjson.ParseBytes(raw)

	choice := parsed.Get("choices.0")
	if !choice.Exists() {
		return nil, apperrors.NewUpstreamError("malformed completion response", stderrors.New("response has no choices"))
	}
	text := choice.Get("message.content")
	if !text.Exists() {
		// legacy /completions shape
		text = choice.Get("text")
	}
	if !text.Exists() {
		return nil, apperrors.NewUpstreamError("malformed completion response", stderrors.New("choice has no text"))
	}

	out := &Completion{
		Text:             strings.TrimSpace(text.String()),
		Model:            parsed.Get("model").String(),
		FinishReason:     choice.Get("finish_reason").String(),
		PromptTokens:     parsed.Get("usage.prompt_tokens").Int(),
		CompletionTokens: parsed.Get("usage.completion_tokens").Int(),
	}

	c.logger.Info("completion received", map[string]interface{}{
		"model":            out.Model,
		"finishReason":     out.FinishReason,
		"completionTokens": out.CompletionTokens,
	})

	return out, nil
}

func (c *Client) endpoint() string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	base = strings.TrimSuffix(base, "/chat/completions")
	return base + "/chat/completions"
}
