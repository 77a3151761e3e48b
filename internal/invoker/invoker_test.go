package invoker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelay/internal/config"
	"chatrelay/internal/mocks"
	"chatrelay/internal/models"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Backend.APIBase = "http://localhost:8001"
	cfg.Backend.Model = "test-model"
	cfg.Limits.MaxOutputTokens = 200
	return cfg
}

func intPtr(i int) *int           { return &i }
func floatPtr(f float32) *float32 { return &f }
func strPtr(s string) *string     { return &s }

func TestInvoker_Success(t *testing.T) {
	mock := &mocks.MockModelClient{
		CompleteFunc: func(ctx context.Context, req *models.ModelRequest) (*models.ModelResponse, error) {
			return &models.ModelResponse{
				Text:  "Hi there!",
				Usage: models.Usage{InputTokens: 3, OutputTokens: 4},
			}, nil
		},
	}
	iv := New(mock, testConfig(), nil)

	result, err := iv.Invoke(context.Background(), "Hello", &models.ChatRequest{Message: strPtr("Hello")})
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", result.Reply)
	assert.Equal(t, 3, result.Usage.InputTokens)
	assert.Equal(t, 4, result.Usage.OutputTokens)
	assert.Equal(t, 1, mock.Calls())
}

func TestInvoker_DefaultsApplied(t *testing.T) {
	mock := &mocks.MockModelClient{}
	iv := New(mock, testConfig(), nil)

	_, err := iv.Invoke(context.Background(), "Hello", &models.ChatRequest{Message: strPtr("Hello")})
	require.NoError(t, err)

	sent := mock.LastRequest()
	require.NotNil(t, sent)
	assert.Equal(t, "test-model", sent.Model)
	assert.Equal(t, 150, sent.Params.MaxTokens)
	assert.InDelta(t, 0.3, sent.Params.Temperature, 0.001)
	assert.InDelta(t, 0.85, sent.Params.TopP, 0.001)
	assert.Contains(t, sent.System, "concise assistant")
}

func TestInvoker_ParamsClamped(t *testing.T) {
	mock := &mocks.MockModelClient{}
	iv := New(mock, testConfig(), nil)

	req := &models.ChatRequest{
		Message:     strPtr("Hello"),
		MaxTokens:   intPtr(10000),
		Temperature: floatPtr(5.0),
		TopP:        floatPtr(-1),
	}
	_, err := iv.Invoke(context.Background(), "Hello", req)
	require.NoError(t, err)

	sent := mock.LastRequest()
	require.NotNil(t, sent)
	assert.Equal(t, 200, sent.Params.MaxTokens, "max_tokens clamped to configured ceiling")
	assert.InDelta(t, 1.0, sent.Params.Temperature, 0.001)
	assert.InDelta(t, 0.01, sent.Params.TopP, 0.001)
}

func TestInvoker_CallerParamsWithinBoundsKept(t *testing.T) {
	mock := &mocks.MockModelClient{}
	iv := New(mock, testConfig(), nil)

	req := &models.ChatRequest{
		Message:     strPtr("Hello"),
		MaxTokens:   intPtr(50),
		Temperature: floatPtr(0.7),
	}
	_, err := iv.Invoke(context.Background(), "Hello", req)
	require.NoError(t, err)

	sent := mock.LastRequest()
	assert.Equal(t, 50, sent.Params.MaxTokens)
	assert.InDelta(t, 0.7, sent.Params.Temperature, 0.001)
}

func TestInvoker_NoMemoization(t *testing.T) {
	mock := &mocks.MockModelClient{}
	iv := New(mock, testConfig(), nil)

	req := &models.ChatRequest{Message: strPtr("Hello")}
	_, err := iv.Invoke(context.Background(), "Hello", req)
	require.NoError(t, err)
	_, err = iv.Invoke(context.Background(), "Hello", req)
	require.NoError(t, err)

	// Same message twice means two independent backend calls
	assert.Equal(t, 2, mock.Calls())
}

func TestInvoker_Timeout(t *testing.T) {
	mock := &mocks.MockModelClient{
		CompleteFunc: func(ctx context.Context, req *models.ModelRequest) (*models.ModelResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	cfg := testConfig()
	cfg.Backend.TimeoutSeconds = 1
	iv := New(mock, cfg, nil)

	start := time.Now()
	_, err := iv.Invoke(context.Background(), "Hello", &models.ChatRequest{Message: strPtr("Hello")})
	require.Error(t, err)

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, KindTimeout, invErr.Kind)
	assert.Less(t, time.Since(start), 3*time.Second, "deadline bounds the call")
	assert.Equal(t, 1, mock.Calls(), "no retry after timeout")
}

func TestInvoker_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
	}{
		{
			name:     "throttling fault",
			err:      &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "rate limited"},
			wantKind: KindThrottled,
		},
		{
			name:     "backend input rejection",
			err:      &openai.APIError{HTTPStatusCode: http.StatusBadRequest, Message: "bad request"},
			wantKind: KindBackendRejected,
		},
		{
			name:     "backend server fault",
			err:      &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable, Message: "overloaded"},
			wantKind: KindBackendUnavailable,
		},
		{
			name:     "transport-level fault",
			err:      &openai.RequestError{HTTPStatusCode: http.StatusBadGateway, Err: fmt.Errorf("bad gateway")},
			wantKind: KindBackendUnavailable,
		},
		{
			name:     "deadline exceeded",
			err:      fmt.Errorf("request: %w", context.DeadlineExceeded),
			wantKind: KindTimeout,
		},
		{
			name:     "unclassifiable fault",
			err:      errors.New("something odd"),
			wantKind: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mocks.MockModelClient{
				CompleteFunc: func(ctx context.Context, req *models.ModelRequest) (*models.ModelResponse, error) {
					return nil, tt.err
				},
			}
			iv := New(mock, testConfig(), nil)

			_, err := iv.Invoke(context.Background(), "Hello", &models.ChatRequest{Message: strPtr("Hello")})
			require.Error(t, err)

			var invErr *InvocationError
			require.ErrorAs(t, err, &invErr)
			assert.Equal(t, tt.wantKind, invErr.Kind)
			assert.Equal(t, 1, mock.Calls(), "exactly one attempt, never retried")
		})
	}
}

func TestInvocationError_Unwrap(t *testing.T) {
	cause := &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}
	invErr := classify(cause)

	var apiErr *openai.APIError
	assert.ErrorAs(t, invErr, &apiErr)
}
