package discordpod

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// LLM defines the minimal contract required by the agent to interact with a
// language-model provider. Implementations may add helper methods but only
// the operation below is relied upon by the rest of the codebase.
type LLM interface {
	// New issues a non-streaming chat completion request.
	New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// Client is the default LLM implementation over the OpenAI chat completions
// API. A non-empty BaseURL points it at any compatible provider, e.g.
// OpenRouter.
type Client struct {
	APIKey  string
	BaseURL string
	client  openai.Client
}

var _ LLM = &Client{}

func NewClient(apiKey, baseURL string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: baseURL,
		client:  openai.NewClient(opts...),
	}
}

func (c *Client) New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
