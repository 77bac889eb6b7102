package ai

import (
	"context"
	"log/slog"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Client wraps the Azure OpenAI chat endpoint. A Client built without
// credentials is disabled and every report falls back to raw data.
type Client struct {
	api        *openai.Client
	deployment string
}

func NewClient(endpoint, apiKey, deployment string) *Client {
	if endpoint == "" || apiKey == "" {
		slog.Info("AI service disabled - Azure OpenAI credentials not provided",
			"required", "AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_API_KEY")
		return &Client{}
	}
	if deployment == "" {
		deployment = "gpt-35-turbo"
	}

	api := openai.NewClient(
		option.WithBaseURL(endpoint),
		option.WithAPIKey(apiKey),
	)
	slog.Info("AI service initialized with Azure OpenAI", "deployment", deployment)
	return &Client{api: &api, deployment: deployment}
}

func (c *Client) IsEnabled() bool {
	return c != nil && c.api != nil
}

func (c *Client) generateCompletion(ctx context.Context, systemMessage, userMessage string) (string, error) {
	if !c.IsEnabled() {
		return "", &AIError{Message: "AI service is not enabled"}
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.deployment),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemMessage),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(userMessage),
					},
				},
			},
		},
		MaxTokens:   openai.Int(1500),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		slog.Error("AI API error", "error", err)
		return "", &AIError{Message: "Failed to generate AI response", Cause: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &AIError{Message: "AI returned empty response"}
	}

	return resp.Choices[0].Message.Content, nil
}

type AIError struct {
	Message string
	Cause   error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AIError) Unwrap() error {
	return e.Cause
}
