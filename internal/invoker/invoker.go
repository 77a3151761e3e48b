package invoker

import (
	"context"
	"time"

	"chatrelay/internal/clients"
	"chatrelay/internal/config"
	"chatrelay/internal/logger"
	"chatrelay/internal/metrics"
	"chatrelay/internal/models"
)

// Invoker builds the backend request, makes exactly one synchronous call per
// invocation, and classifies the outcome. It performs no retries: each HTTP
// request maps to at most one backend call, keeping latency and cost
// predictable. Retry policy, if wanted, belongs to the caller.
type Invoker struct {
	client   clients.ModelClient
	model    string
	system   string
	timeout  time.Duration
	defaults config.GenerationDefaults
	limits   config.LimitsConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// New creates an Invoker. The backend client is injected so tests can
// substitute a fake.
func New(client clients.ModelClient, cfg *config.Config, m *metrics.Metrics) *Invoker {
	return &Invoker{
		client:   client,
		model:    cfg.Backend.Model,
		system:   cfg.SystemPrompt,
		timeout:  cfg.Backend.Timeout(),
		defaults: cfg.Defaults,
		limits:   cfg.Limits,
		logger:   logger.GetLogger().WithComponent("invoker"),
		metrics:  m,
	}
}

// Invoke sends the sanitized prompt to the backend and returns the normalized
// result, or an *InvocationError describing the single attempt's outcome.
func (iv *Invoker) Invoke(ctx context.Context, prompt models.SanitizedPrompt, req *models.ChatRequest) (*models.ChatResult, error) {
	params := iv.resolveParams(req)

	modelReq := &models.ModelRequest{
		Model:  iv.model,
		System: iv.system,
		Prompt: prompt,
		Params: params,
	}

	ctx, cancel := context.WithTimeout(ctx, iv.timeout)
	defer cancel()

	// Log prompt length only, never content
	iv.logger.Debug("invoking model %s, prompt length %d, max_tokens %d",
		iv.model, len(prompt), params.MaxTokens)

	start := time.Now()
	resp, err := iv.client.Complete(ctx, modelReq)
	iv.metrics.ObserveBackendLatency(time.Since(start))
	if err != nil {
		inverr := classify(err)
		iv.logger.Error("backend call failed: kind=%s: %v", inverr.Kind, err)
		return nil, inverr
	}

	iv.metrics.AddUsage(resp.Usage)
	iv.logger.Debug("backend call completed, output tokens %d", resp.Usage.OutputTokens)

	return &models.ChatResult{
		Reply: resp.Text,
		Usage: resp.Usage,
	}, nil
}

// resolveParams applies defaults for absent parameters and clamps
// caller-supplied values to the configured ceilings.
func (iv *Invoker) resolveParams(req *models.ChatRequest) models.GenerationParams {
	params := models.GenerationParams{
		MaxTokens:   iv.defaults.MaxTokens,
		Temperature: iv.defaults.Temperature,
		TopP:        iv.defaults.TopP,
	}
	if req == nil {
		return params
	}

	if req.MaxTokens != nil {
		params.MaxTokens = clampInt(*req.MaxTokens, 1, iv.limits.MaxOutputTokens)
	}
	if req.Temperature != nil {
		params.Temperature = clampFloat(*req.Temperature, 0, 1)
	}
	if req.TopP != nil {
		params.TopP = clampFloat(*req.TopP, 0.01, 1)
	}
	return params
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
