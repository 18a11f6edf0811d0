package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are a strict data validation engine.
The user provides a single value and a validation condition.
Evaluate the value against the condition.
Respond with a JSON object: {"isValid": true|false, "reason": "short explanation"}.`

// DefaultTimeout bounds each judge call when the caller does not
// configure one.
const DefaultTimeout = 10 * time.Second

// OpenAIJudge classifies values through an OpenAI-compatible chat
// completion endpoint.
type OpenAIJudge struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// OpenAIOptions configures an OpenAIJudge.
type OpenAIOptions struct {
	APIKey  string
	Model   string        // defaults to gpt-4o-mini
	BaseURL string        // optional, for compatible endpoints and tests
	Timeout time.Duration // per-call, defaults to DefaultTimeout
}

// NewOpenAI creates an OpenAI-backed judge. A missing API key is not an
// error here: Ready surfaces it so the suite evaluator can fail the rule
// with a single diagnostic.
func NewOpenAI(opts OpenAIOptions) *OpenAIJudge {
	model := opts.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var client *openai.Client
	if opts.APIKey != "" {
		cfg := openai.DefaultConfig(opts.APIKey)
		if opts.BaseURL != "" {
			cfg.BaseURL = opts.BaseURL
		}
		client = openai.NewClientWithConfig(cfg)
	}

	slog.Debug("judge configured", "model", model, "timeout", timeout)
	return &OpenAIJudge{client: client, model: model, timeout: timeout}
}

// Ready implements Judge.
func (j *OpenAIJudge) Ready() error {
	if j.client == nil {
		return unavailable(errors.New("no API key configured"))
	}
	return nil
}

// Check implements Judge. One call per value, bounded by the configured
// timeout.
func (j *OpenAIJudge) Check(ctx context.Context, prompt, value string) (Verdict, error) {
	if j.client == nil {
		return Verdict{}, unavailable(errors.New("no API key configured"))
	}

	callCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	resp, err := j.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: j.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage(prompt, value)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Verdict{}, classify(err, callCtx)
	}
	if len(resp.Choices) == 0 {
		return Verdict{}, fmt.Errorf("judge returned no choices")
	}

	return parseVerdict(resp.Choices[0].Message.Content)
}

// userMessage renders the per-value judgment request.
func userMessage(prompt, value string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Validation Condition: %q\n", prompt)
	fmt.Fprintf(&b, "Value: %q\n", value)
	return b.String()
}

// parseVerdict decodes the judge's JSON reply.
func parseVerdict(content string) (Verdict, error) {
	var reply struct {
		IsValid bool   `json:"isValid"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return Verdict{}, fmt.Errorf("parse judge reply: %w", err)
	}
	return Verdict{Valid: reply.IsValid, Reason: reply.Reason}, nil
}

// classify maps transport errors onto the judge error taxonomy.
func classify(err error, callCtx context.Context) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return unavailable(err)
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return unavailable(err)
	}
	// Transport failures (DNS, refused connection) never reach the API.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return unavailable(err)
	}

	return err
}
