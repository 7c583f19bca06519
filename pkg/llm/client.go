package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/umputun/mailscope/pkg/config"
)

// ErrEmptyResponse is returned when the model produced no usable text
var ErrEmptyResponse = errors.New("empty response from llm")

// Request is a single model call made by an enrichment handler
type Request struct {
	System    string
	Prompt    string
	Images    []string // data URIs, switches the call to the vision model
	MaxTokens int      // 0 uses configured default
	JSON      bool     // ask for a JSON object response if json mode is enabled
}

// Client wraps OpenAI-compatible chat completions with throttling and a circuit breaker
type Client struct {
	client  *openai.Client
	config  config.LLMConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a new LLM client
func NewClient(cfg config.LLMConfig) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	res := &Client{client: openai.NewClientWithConfig(clientConfig), config: cfg}

	if cfg.RequestsPerMinute > 0 {
		res.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	if cfg.Breaker.MaxFailures > 0 {
		maxFailures := uint32(cfg.Breaker.MaxFailures) //nolint:gosec // validated non-negative
		res.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "llm",
			Timeout: cfg.Breaker.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: func(err error) bool {
				// caller cancellation says nothing about the endpoint health
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				lgr.Printf("[WARN] circuit breaker %s changed from %s to %s", name, from, to)
			},
		})
	}
	return res
}

// Complete sends the request and returns generated text
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("llm throttle: %w", err)
		}
	}

	if c.breaker == nil {
		return c.complete(ctx, req)
	}
	res, err := c.breaker.Execute(func() (interface{}, error) { return c.complete(ctx, req) })
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	chatReq := c.chatRequest(req)
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	lgr.Printf("[DEBUG] llm %s responded with %d chars, finish reason %q", chatReq.Model, len(text), resp.Choices[0].FinishReason)
	return text, nil
}

func (c *Client) chatRequest(req Request) openai.ChatCompletionRequest {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.config.MaxTokens
	}

	res := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: float32(c.config.Temperature),
		MaxTokens:   maxTokens,
	}
	if req.System != "" {
		res.Messages = append(res.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}

	if len(req.Images) == 0 {
		res.Messages = append(res.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})
	} else {
		res.Model = c.config.VisionModel
		if res.Model == "" {
			res.Model = c.config.Model
		}
		parts := make([]openai.ChatMessagePart, 0, len(req.Images)+1)
		for _, img := range req.Images {
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: img, Detail: openai.ImageURLDetailAuto},
			})
		}
		parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: req.Prompt})
		res.Messages = append(res.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts})
	}

	// add JSON response format if enabled
	if req.JSON && c.config.UseJSONMode {
		res.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	return res
}
