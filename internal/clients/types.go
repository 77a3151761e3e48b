package clients

import (
	"context"

	"chatrelay/internal/models"
)

// ModelClient defines the interface for inference backend clients.
// Implementations make exactly one backend call per Complete invocation.
type ModelClient interface {
	Complete(ctx context.Context, req *models.ModelRequest) (*models.ModelResponse, error)
}

// ModelClientConfig contains configuration for backend clients.
type ModelClientConfig struct {
	APIBase string
	APIKey  string
}
