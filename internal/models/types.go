package models

// ChatRequest represents an incoming chat request. Generation parameters are
// pointers so a missing field can be told apart from an explicit zero.
type ChatRequest struct {
	Message     *string  `json:"message"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	TopP        *float32 `json:"top_p,omitempty"`
}

// SanitizedPrompt is message text that passed validation: trimmed, length
// bounded, free of control characters and invalid UTF-8.
type SanitizedPrompt string

func (p SanitizedPrompt) String() string { return string(p) }

// GenerationParams are the resolved parameters sent to the backend, after
// defaults and clamping have been applied.
type GenerationParams struct {
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// ModelRequest is the payload handed to the backend client.
type ModelRequest struct {
	Model  string
	System string
	Prompt SanitizedPrompt
	Params GenerationParams
}

// Usage holds token counts reported by the backend.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ModelResponse is the backend result: generated text plus usage metadata.
type ModelResponse struct {
	Text  string
	Usage Usage
}

// ChatResult is the normalized success payload returned to the client.
type ChatResult struct {
	Reply string `json:"reply"`
	Usage Usage  `json:"usage"`
}

// ErrorResponse is the normalized error payload returned to the client.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
