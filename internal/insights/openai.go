package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = "You are a supportive smoking-cessation coach. Given a user's " +
	"tracking statistics, produce 3 to 5 behavioral insights as a JSON array. Each " +
	"element has the fields title, description, confidence (low|medium|high), " +
	"category (pattern|strategy|trigger|behavior|progress), action_tip, and " +
	"data_points (array of strings). Respond with the JSON array only."

// OpenAIOpts holds configuration for the OpenAI-backed generator.
type OpenAIOpts struct {
	APIKey string
	Model  string
}

// OpenAIOption defines a configuration option for the OpenAI generator.
type OpenAIOption func(*OpenAIOpts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) OpenAIOption {
	return func(o *OpenAIOpts) { o.APIKey = key }
}

// WithModel sets the model used for generation.
func WithModel(model string) OpenAIOption {
	return func(o *OpenAIOpts) { o.Model = model }
}

// OpenAIGenerator builds insights from the user's actual statistics using the
// OpenAI chat completions API. Any failure falls back to the curated set so
// the insights screen never comes up empty.
type OpenAIGenerator struct {
	client   openai.Client
	model    string
	fallback *StaticGenerator
}

// NewOpenAIGenerator creates an OpenAI-backed generator. The API key falls
// back to the OPENAI_API_KEY environment variable.
func NewOpenAIGenerator(opts ...OpenAIOption) (*OpenAIGenerator, error) {
	var cfg OpenAIOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not set")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	return &OpenAIGenerator{
		client:   openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:    cfg.Model,
		fallback: &StaticGenerator{},
	}, nil
}

// Generate asks the model for insights built from the snapshot. On any error,
// malformed response included, it logs and returns the curated set instead.
func (g *OpenAIGenerator) Generate(ctx context.Context, snap Snapshot) ([]Insight, error) {
	generated, err := g.generate(ctx, snap)
	if err != nil {
		slog.Warn("insights: generation failed, using curated set", "error", err)
		return g.fallback.Generate(ctx, snap)
	}
	return generated, nil
}

func (g *OpenAIGenerator) generate(ctx context.Context, snap Snapshot) ([]Insight, error) {
	input, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal statistics snapshot: %w", err)
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(string(input)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	// Models sometimes wrap JSON in a markdown fence despite instructions.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var generated []Insight
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &generated); err != nil {
		return nil, fmt.Errorf("failed to parse generated insights: %w", err)
	}
	if len(generated) == 0 {
		return nil, fmt.Errorf("model produced no insights")
	}
	return generated, nil
}
