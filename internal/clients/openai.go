package clients

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"chatrelay/internal/models"
)

// OpenAIClient implements ModelClient against an OpenAI-compatible
// chat completions endpoint.
type OpenAIClient struct {
	config ModelClientConfig
	client *openai.Client
}

// NewOpenAIClient creates a new backend client.
func NewOpenAIClient(config ModelClientConfig) *OpenAIClient {
	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.APIBase
	if !strings.HasPrefix(clientConfig.BaseURL, "http://") && !strings.HasPrefix(clientConfig.BaseURL, "https://") {
		clientConfig.BaseURL = "http://" + clientConfig.BaseURL
	}

	return &OpenAIClient{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req *models.ModelRequest) (*models.ModelResponse, error) {
	openaiReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		MaxTokens:   req.Params.MaxTokens,
		Temperature: req.Params.Temperature,
		TopP:        req.Params.TopP,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt.String()},
		},
	}
	if req.System != "" {
		openaiReq.Messages = append([]openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
		}, openaiReq.Messages...)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openaiReq)
	if err != nil {
		// Typed SDK errors pass through for classification upstream
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &models.ModelResponse{
		Text: resp.Choices[0].Message.Content,
		Usage: models.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
