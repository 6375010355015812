// Package llm wraps the OpenAI API behind the two generation paths the
// application uses: a persistent assistant with threads and runs, and a
// plain chat completion.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/videa-app/videa/internal/logging"
)

// Sentinel errors surfaced to callers deciding whether to fall back.
var (
	ErrRunTimeout    = errors.New("timeout waiting for assistant response")
	ErrEmptyResponse = errors.New("empty response from model")
)

const (
	defaultCompletionModel = "gpt-4o-mini"
	defaultAssistantModel  = "gpt-4-turbo-preview"
	defaultPollInterval    = time.Second
	defaultRunTimeout      = time.Minute
	defaultTemperature     = 0.7
	defaultMaxTokens       = 1500

	assistantName        = "Videa Video Idea Generator"
	assistantDescription = "An assistant that generates viral video ideas based on YouTube trends and user preferences"
)

const assistantInstructions = `You are an AI assistant for Videa, an application that helps content creators generate viral video ideas based on trending topics and data analysis.

Your role is to create original, engaging video concepts that have viral potential. You should:
1. Analyze trending topics and data
2. Generate creative ideas that leverage current trends
3. Provide specific, actionable video concepts
4. Format your responses as clean JSON only
5. Always respond with a well-structured idea that includes title, concept, hashtags, and other required fields
6. Never include text outside the JSON response

When improving ideas, focus on the user's specific feedback while maintaining the strengths of the original concept.`

// Config holds OpenAI client settings.
type Config struct {
	APIKey          string
	CompletionModel string
	AssistantModel  string
	// AssistantID reuses an existing assistant instead of creating one.
	AssistantID  string
	PollInterval time.Duration
	RunTimeout   time.Duration
	Temperature  float32
	MaxTokens    int
}

func (c *Config) applyDefaults() {
	if c.CompletionModel == "" {
		c.CompletionModel = defaultCompletionModel
	}
	if c.AssistantModel == "" {
		c.AssistantModel = defaultAssistantModel
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaultRunTimeout
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultMaxTokens
	}
}

// openaiAPI is the slice of the OpenAI client the Client depends on.
type openaiAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	RetrieveAssistant(ctx context.Context, assistantID string) (openai.Assistant, error)
	CreateAssistant(ctx context.Context, request openai.AssistantRequest) (openai.Assistant, error)
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)
}

var _ openaiAPI = (*openai.Client)(nil)

// Client issues generation requests against the OpenAI API.
type Client struct {
	api    openaiAPI
	cfg    Config
	logger *logging.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu          sync.Mutex
	assistantID string
}

// NewClient creates a Client from the config.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	cfg.applyDefaults()
	return &Client{
		api:    openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Complete issues a single stateless chat completion.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.CompletionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateWithAssistant posts the prompt to a fresh thread on the shared
// assistant, runs it, and polls until the run completes or times out.
func (c *Client) GenerateWithAssistant(ctx context.Context, prompt string) (string, error) {
	assistantID, err := c.ensureAssistant(ctx)
	if err != nil {
		return "", err
	}

	thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}

	if _, err := c.api.CreateMessage(ctx, thread.ID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	}); err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	run, err := c.api.CreateRun(ctx, thread.ID, openai.RunRequest{AssistantID: assistantID})
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}

	start := c.now()
	for {
		switch run.Status {
		case openai.RunStatusCompleted:
			return c.assistantReply(ctx, thread.ID)
		case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired:
			return "", fmt.Errorf("run ended with status %s", run.Status)
		}

		if c.now().Sub(start) > c.cfg.RunTimeout {
			return "", ErrRunTimeout
		}

		if err := c.sleep(ctx, c.cfg.PollInterval); err != nil {
			return "", err
		}

		run, err = c.api.RetrieveRun(ctx, thread.ID, run.ID)
		if err != nil {
			return "", fmt.Errorf("retrieve run: %w", err)
		}
	}
}

// ensureAssistant returns the assistant ID, validating a configured one or
// creating a new assistant on first use.
func (c *Client) ensureAssistant(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.assistantID != "" {
		return c.assistantID, nil
	}

	if c.cfg.AssistantID != "" {
		assistant, err := c.api.RetrieveAssistant(ctx, c.cfg.AssistantID)
		if err == nil {
			c.assistantID = assistant.ID
			return c.assistantID, nil
		}
		c.logger.Warn("Could not find existing assistant, will create a new one",
			logging.WithField("assistantId", c.cfg.AssistantID))
	}

	c.logger.Info("Creating new OpenAI assistant")
	assistant, err := c.api.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        c.cfg.AssistantModel,
		Name:         ptr(assistantName),
		Description:  ptr(assistantDescription),
		Instructions: ptr(assistantInstructions),
	})
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}

	c.logger.Info("Created assistant", logging.WithField("assistantId", assistant.ID))
	c.assistantID = assistant.ID
	return c.assistantID, nil
}

// assistantReply returns the newest assistant message text in the thread.
func (c *Client) assistantReply(ctx context.Context, threadID string) (string, error) {
	messages, err := c.api.ListMessage(ctx, threadID, nil, nil, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}

	for _, message := range messages.Messages {
		if message.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		for _, content := range message.Content {
			if content.Type == "text" && content.Text != nil && content.Text.Value != "" {
				return content.Text.Value, nil
			}
		}
	}
	return "", ErrEmptyResponse
}

func ptr[T any](v T) *T {
	return &v
}

var fencePattern = regexp.MustCompile("```json\\s*|\\s*```")

// StripFences removes markdown code fences a model may wrap around JSON.
func StripFences(s string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(s, ""))
}
