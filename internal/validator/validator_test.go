package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"chatrelay/internal/models"
)

func strPtr(s string) *string { return &s }

func TestValidator_Validate(t *testing.T) {
	v := New(100)

	tests := []struct {
		name     string
		req      *models.ChatRequest
		wantKind Kind
		want     string
	}{
		{
			name: "valid message",
			req:  &models.ChatRequest{Message: strPtr("Hello")},
			want: "Hello",
		},
		{
			name: "message is trimmed",
			req:  &models.ChatRequest{Message: strPtr("  Hello  \n")},
			want: "Hello",
		},
		{
			name: "multiline message allowed",
			req:  &models.ChatRequest{Message: strPtr("line one\nline two\ttabbed")},
			want: "line one\nline two\ttabbed",
		},
		{
			name:     "nil request",
			req:      nil,
			wantKind: KindMissingField,
		},
		{
			name:     "missing message field",
			req:      &models.ChatRequest{},
			wantKind: KindMissingField,
		},
		{
			name:     "empty message",
			req:      &models.ChatRequest{Message: strPtr("")},
			wantKind: KindEmpty,
		},
		{
			name:     "whitespace only message",
			req:      &models.ChatRequest{Message: strPtr("   \n\t  ")},
			wantKind: KindEmpty,
		},
		{
			name:     "message over the ceiling",
			req:      &models.ChatRequest{Message: strPtr(strings.Repeat("a", 101))},
			wantKind: KindTooLong,
		},
		{
			name:     "null byte rejected",
			req:      &models.ChatRequest{Message: strPtr("hello\x00world")},
			wantKind: KindInvalidCharacters,
		},
		{
			name:     "escape character rejected",
			req:      &models.ChatRequest{Message: strPtr("hi\x1b[31m")},
			wantKind: KindInvalidCharacters,
		},
		{
			name:     "invalid utf-8 rejected",
			req:      &models.ChatRequest{Message: strPtr("caf\xc3")},
			wantKind: KindInvalidCharacters,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := v.Validate(tt.req)
			if tt.wantKind != "" {
				assert.Error(t, err)
				var valErr *ValidationError
				assert.ErrorAs(t, err, &valErr)
				assert.Equal(t, tt.wantKind, valErr.Kind)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, prompt.String())
		})
	}
}

func TestValidator_BoundaryLength(t *testing.T) {
	v := New(10)

	// Exactly at the ceiling passes
	prompt, err := v.Validate(&models.ChatRequest{Message: strPtr(strings.Repeat("x", 10))})
	assert.NoError(t, err)
	assert.Len(t, prompt.String(), 10)

	// Ceiling counts runes, not bytes
	prompt, err = v.Validate(&models.ChatRequest{Message: strPtr(strings.Repeat("é", 10))})
	assert.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 10), prompt.String())
}

func TestValidator_IsPure(t *testing.T) {
	v := New(100)
	msg := "  Hello  "
	req := &models.ChatRequest{Message: &msg}

	_, err := v.Validate(req)
	assert.NoError(t, err)

	// Input is untouched; only the returned prompt is normalized
	assert.Equal(t, "  Hello  ", *req.Message)
}
