package mocks

import (
	"context"
	"sync"

	"chatrelay/internal/models"
)

// MockModelClient implements clients.ModelClient for testing. It counts calls
// so tests can assert how many backend attempts were made.
type MockModelClient struct {
	CompleteFunc func(ctx context.Context, req *models.ModelRequest) (*models.ModelResponse, error)

	mu       sync.Mutex
	calls    int
	requests []*models.ModelRequest
}

func (m *MockModelClient) Complete(ctx context.Context, req *models.ModelRequest) (*models.ModelResponse, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &models.ModelResponse{}, nil
}

// Calls returns the number of Complete invocations so far.
func (m *MockModelClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request, or nil when none was made.
func (m *MockModelClient) LastRequest() *models.ModelRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}
