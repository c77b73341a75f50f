package suggest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultBaseURL is the Hugging Face OpenAI-compatible inference router.
const DefaultBaseURL = "https://router.huggingface.co/v1/"

const maxCompletionTokens = 25

// ClientConfig configures the remote completion client.
type ClientConfig struct {
	BaseURL    string
	Token      string
	Models     []string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client asks hosted chat models for short task completions.
type Client struct {
	api    openai.Client
	models []string
	token  string
	logger *slog.Logger
}

var _ Suggester = (*Client)(nil)

// NewClient builds a Client. Automatic retries are disabled: the model list
// is the only fallback.
func NewClient(cfg ClientConfig) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.Token),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &Client{
		api:    openai.NewClient(opts...),
		models: append([]string(nil), cfg.Models...),
		token:  cfg.Token,
		logger: cfg.Logger,
	}
}

// ErrNoCompletion is returned when every configured model failed.
var ErrNoCompletion = errors.New("no model produced a completion")

// Complete tries each model in order and returns the first usable answer.
func (c *Client) Complete(ctx context.Context, boardTitle, input string) ([]string, error) {
	if strings.TrimSpace(c.token) == "" {
		return nil, fmt.Errorf("%w: inference token not configured", ErrNoCompletion)
	}

	ctx, span := otel.Tracer("taskvault/suggest").Start(ctx, "suggest.complete")
	defer span.End()

	var errs []error
	for _, model := range c.models {
		suggestions, err := c.completeWith(ctx, model, boardTitle, input)
		if err != nil {
			c.logger.Warn("completion failed", slog.String("model", model), slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", model, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		span.SetAttributes(attribute.String("suggest.model", model))
		c.logger.Debug("completion succeeded", slog.String("model", model))
		return suggestions, nil
	}

	err := fmt.Errorf("%w: %w", ErrNoCompletion, errors.Join(errs...))
	span.RecordError(err)
	span.SetStatus(codes.Error, "all models failed")
	return nil, err
}

func (c *Client) completeWith(ctx context.Context, model, boardTitle, input string) ([]string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(Prompt(boardTitle, input)),
		},
		MaxTokens: openai.Int(maxCompletionTokens),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty choices")
	}
	suggestions := ParseCompletion(resp.Choices[0].Message.Content)
	if len(suggestions) == 0 {
		return nil, errors.New("empty completion")
	}
	return suggestions, nil
}

// Suggest is Complete with the canned fallback substituted on failure; it
// never returns an error.
func (c *Client) Suggest(ctx context.Context, boardTitle, input string) ([]string, error) {
	suggestions, err := c.Complete(ctx, boardTitle, input)
	if err != nil {
		return append([]string(nil), FallbackSuggestions...), nil
	}
	return suggestions, nil
}

// Prompt builds the single user message sent to the model.
func Prompt(boardTitle, input string) string {
	return fmt.Sprintf("Context: Board %q. User typing: %q. Suggest 3 very short, 2-word todo completions. Return only comma separated values.",
		boardTitle, input)
}

// ParseCompletion splits a comma separated answer into at most three
// cleaned suggestions.
func ParseCompletion(output string) []string {
	var out []string
	for _, part := range strings.Split(output, ",") {
		if s := Clean(part); s != "" {
			out = append(out, s)
		}
		if len(out) == 3 {
			break
		}
	}
	return out
}
