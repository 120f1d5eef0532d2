package nlp

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Request is one instruction/sentence pair sent to a language model.
type Request struct {
	Instruction string
	Sentence    string
	// JSONMode asks the service to constrain the reply to a JSON object.
	JSONMode bool
}

// Completer sends a Request to a language model and returns its raw reply.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Model() string
}

// OpenAIConfig configures an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	APIKey string
	// BaseURL overrides the API root (e.g. a local OpenAI-compatible server).
	BaseURL string
	Model   string
	// HTTPClient is optional.
	HTTPClient *http.Client
}

// OpenAICompleter implements Completer with the chat completions API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter creates a completer. An API key is required unless a
// custom BaseURL is set, since local servers often accept any key.
func NewOpenAICompleter(cfg OpenAIConfig) (*OpenAICompleter, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY)")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// Model implements Completer.
func (c *OpenAICompleter) Model() string {
	return c.model
}

// Complete implements Completer.
func (c *OpenAICompleter) Complete(ctx context.Context, req Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.Instruction},
			{Role: openai.ChatMessageRoleUser, Content: req.Sentence},
		},
		// Temperature is omitempty; the smallest positive float is sent in place of zero.
		Temperature: math.SmallestNonzeroFloat32,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", c.model)
	}
	return resp.Choices[0].Message.Content, nil
}
