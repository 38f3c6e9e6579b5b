// Package translator implements the chat-completion translator kind: wire
// format, HTTP client, prompt-preamble loading, and round-robin pool
// assignment across a configured API credential list.
package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mapomagpie/lottr/internal/batcher"
	"github.com/mapomagpie/lottr/internal/cache"
	"github.com/mapomagpie/lottr/internal/texture"
)

// defaultTimeout mirrors the reference configuration's 180s HTTP client
// default (original: Duration::from_secs(60*3)).
const defaultTimeout = 180 * time.Second

// Role is a chat-completion message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat-completion message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      *float64  `json:"temperature,omitempty"`
	TopP             *float64  `json:"top_p,omitempty"`
	N                *int      `json:"n,omitempty"`
	Stream           *bool     `json:"stream,omitempty"`
	Stop             []string  `json:"stop,omitempty"`
	MaxTokens        *int      `json:"max_tokens,omitempty"`
	PresencePenalty  *float64  `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64  `json:"frequency_penalty,omitempty"`
	User             string    `json:"user,omitempty"`
}

type chatCompletionChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Choices []chatCompletionChoice `json:"choices"`
	Usage   chatCompletionUsage    `json:"usage"`
}

// API is one credential entry in the round-robin pool.
type API struct {
	APIKey string `mapstructure:"api_key" json:"api_key"`
	APIURL string `mapstructure:"api_url" json:"api_url"`
	OrgID  string `mapstructure:"org_id" json:"org_id,omitempty"`
}

// Options configures the chat-completion translator kind.
type Options struct {
	APIPool       []API  `mapstructure:"api_pool"`
	PromptPath    string `mapstructure:"prompt_path"`
	MaxConcurrent int    `mapstructure:"max_concurrent"`
}

// Client performs one HTTP POST per batch against a chat-completion
// endpoint and returns the first choice's message content verbatim. When a
// translation-memory cache is set and holds the batch prompt, the cached
// response is returned and no request is sent.
type Client struct {
	httpClient *http.Client
	api        API
	base       chatCompletionRequest
	cache      *cache.Cache
	langPair   string
}

func newClient(api API, prompts []Message, c *cache.Cache, langPair string) *Client {
	if api.APIKey == "" || api.APIURL == "" {
		panic("translator: chat-completion client requires non-empty api_key and api_url")
	}
	base := chatCompletionRequest{Model: "gpt-3.5-turbo", Stream: boolPtr(false)}
	if len(prompts) > 0 {
		base.Messages = prompts
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		api:        api,
		base:       base,
		cache:      c,
		langPair:   langPair,
	}
}

func boolPtr(b bool) *bool { return &b }

// Translate sends one batch and returns a texture.TranslatedLine carrying
// the backend's raw response text. Non-2xx responses, decode failures, and
// transport errors are all returned as plain errors: the orchestrator's
// worker loop treats any error here as retryable.
func (c *Client) Translate(ctx context.Context, batch batcher.BatchPackage) (texture.TranslatedLine, error) {
	if c.cache != nil {
		if hit, ok := c.cache.Lookup(batch.Payload, c.langPair); ok {
			return texture.TranslatedLine{
				Translator: texture.TranslatorChatGPT,
				Content:    hit,
				Start:      batch.Start,
				End:        batch.End,
			}, nil
		}
	}

	req := c.base
	req.Messages = append(append([]Message{}, c.base.Messages...), Message{Role: RoleUser, Content: batch.Payload})

	body, err := json.Marshal(req)
	if err != nil {
		return texture.TranslatedLine{}, fmt.Errorf("translator: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.api.APIURL, bytes.NewReader(body))
	if err != nil {
		return texture.TranslatedLine{}, fmt.Errorf("translator: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.api.APIKey)
	if c.api.OrgID != "" {
		httpReq.Header.Set("OpenAI-Organization", c.api.OrgID)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return texture.TranslatedLine{}, fmt.Errorf("translator: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return texture.TranslatedLine{}, fmt.Errorf("translator: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return texture.TranslatedLine{}, fmt.Errorf("translator: non-2xx response %d: %s", resp.StatusCode, data)
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return texture.TranslatedLine{}, fmt.Errorf("translator: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return texture.TranslatedLine{}, fmt.Errorf("translator: response had no choices")
	}
	content := decoded.Choices[0].Message.Content

	if c.cache != nil {
		c.cache.Store(batch.Payload, content, c.langPair)
	}

	return texture.TranslatedLine{
		Translator: texture.TranslatorChatGPT,
		Content:    content,
		Start:      batch.Start,
		End:        batch.End,
	}, nil
}

// Pool round-robins Client construction across a configured API credential
// list: credential i is used by creations i, i+P, i+2P, ... for pool size
// P. Construction panics on an empty pool and returns an error for an
// unreadable or invalid prompt file; both are fatal configuration errors.
type Pool struct {
	apis        []API
	prompts     []Message
	clientCount int
	cache       *cache.Cache
	langPair    string
}

// NewPool loads the prompt-preamble file (if any) and validates the pool.
// An empty api_pool panics, matching newClient's panic for an empty
// api_key/api_url: both are the same fatal configuration-error class,
// caught before any client does network I/O.
func NewPool(opt Options, c *cache.Cache, langPair string) (*Pool, error) {
	if len(opt.APIPool) == 0 {
		panic("translator: chat-completion api_pool is empty")
	}
	var prompts []Message
	if opt.PromptPath != "" {
		data, err := os.ReadFile(opt.PromptPath)
		if err != nil {
			return nil, fmt.Errorf("translator: prompt file not found: %w", err)
		}
		if err := json.Unmarshal(data, &prompts); err != nil {
			return nil, fmt.Errorf("translator: prompt file is not valid: %w", err)
		}
	}
	return &Pool{apis: opt.APIPool, prompts: prompts, cache: c, langPair: langPair}, nil
}

// NextClient returns the next client in round-robin order.
func (p *Pool) NextClient() *Client {
	api := p.apis[p.clientCount%len(p.apis)]
	p.clientCount++
	return newClient(api, p.prompts, p.cache, p.langPair)
}

// Size reports the pool's credential count.
func (p *Pool) Size() int { return len(p.apis) }
