// Package llm wraps the OpenAI Responses API behind the small Completer
// interface used by the extraction, overview, discovery and chat components.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// ErrUnavailable is returned by every call on a client built without an API key.
var ErrUnavailable = errors.New("llm: client not configured")

// Role identifies the author of a prompt message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one prompt message. ImageURL, when set, is sent as an image
// input alongside Text (data URLs are accepted).
type Message struct {
	Role     Role
	Text     string
	ImageURL string
}

// Request describes a single completion.
type Request struct {
	Instructions string
	Messages     []Message
	MaxTokens    int64
	// Vision selects the vision model instead of the chat model.
	Vision bool
}

// Schema is a strict JSON schema for structured output.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Completer produces model output for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	CompleteJSON(ctx context.Context, req Request, schema Schema, out any) error
}

// Config configures the OpenAI client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	VisionModel string
	Timeout     time.Duration
	MaxRetries  int
}

// Client is a Completer backed by the OpenAI Responses API.
type Client struct {
	api     *openai.Client
	cfg     Config
	backoff []time.Duration
}

var _ Completer = (*Client)(nil)

// New creates a client. An empty API key yields a client whose calls all
// fail with ErrUnavailable, so callers fall back to their offline paths.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.Model
	}
	c := &Client{
		cfg:     cfg,
		backoff: []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
	}
	if cfg.APIKey == "" {
		return c
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Retries are handled by callWithRetry so the per-call timeout covers them.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	api := openai.NewClient(opts...)
	c.api = &api
	return c
}

// Available reports whether the client can reach the API.
func (c *Client) Available() bool {
	return c.api != nil
}

// Complete returns the model's text output.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if c.api == nil {
		return "", ErrUnavailable
	}
	resp, err := c.call(ctx, c.params(req))
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}

// CompleteJSON requests schema-constrained output and decodes it into out.
func (c *Client) CompleteJSON(ctx context.Context, req Request, schema Schema, out any) error {
	if c.api == nil {
		return ErrUnavailable
	}
	params := c.params(req)
	params.Text = responses.ResponseTextConfigParam{
		Format: responses.ResponseFormatTextConfigUnionParam{
			OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
				Name:        schema.Name,
				Schema:      schema.Definition,
				Strict:      openai.Bool(true),
				Description: openai.String(schema.Description),
				Type:        "json_schema",
			},
		},
	}
	resp, err := c.call(ctx, params)
	if err != nil {
		return err
	}
	text := resp.OutputText()
	if err := DecodeModelJSON(text, out); err != nil {
		return fmt.Errorf("llm: decode %s: %w (model_output_prefix=%q)", schema.Name, err, truncate(text, 200))
	}
	return nil
}

func (c *Client) call(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	return callWithRetry(ctx, c.api, params, c.cfg.MaxRetries, c.backoff)
}

func (c *Client) params(req Request) responses.ResponseNewParams {
	model := c.cfg.Model
	if req.Vision {
		model = c.cfg.VisionModel
	}
	items := make([]responses.ResponseInputItemUnionParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		items = append(items, inputItem(m))
	}
	params := responses.ResponseNewParams{
		Model: model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: items,
		},
	}
	if req.Instructions != "" {
		params.Instructions = openai.String(req.Instructions)
	}
	if req.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(req.MaxTokens)
	}
	return params
}

func inputItem(m Message) responses.ResponseInputItemUnionParam {
	role := responses.EasyInputMessageRoleUser
	if m.Role == RoleAssistant {
		role = responses.EasyInputMessageRoleAssistant
	}
	if m.ImageURL == "" {
		return responses.ResponseInputItemParamOfMessage(m.Text, role)
	}
	content := responses.ResponseInputMessageContentListParam{
		{OfInputText: &responses.ResponseInputTextParam{Text: m.Text}},
		{OfInputImage: &responses.ResponseInputImageParam{
			ImageURL: openai.String(m.ImageURL),
			Detail:   responses.ResponseInputImageDetailAuto,
		}},
	}
	return responses.ResponseInputItemParamOfMessage(content, role)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
