package validator

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"chatrelay/internal/models"
)

// Kind identifies why a request was rejected.
type Kind string

const (
	KindMissingField      Kind = "missing_field"
	KindEmpty             Kind = "empty"
	KindTooLong           Kind = "too_long"
	KindInvalidCharacters Kind = "invalid_characters"
)

// ValidationError carries the rejection kind so the HTTP boundary can map it
// to a client-facing status.
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Kind, e.Message)
}

// Validator checks and normalizes inbound message text. It bounds cost and
// rejects obviously malformed input; it is not a prompt-injection boundary.
type Validator struct {
	maxChars int
}

// New creates a Validator with the given message length ceiling in characters.
func New(maxChars int) *Validator {
	return &Validator{maxChars: maxChars}
}

// Validate inspects a raw request and returns the sanitized prompt. It is a
// pure function over its input; no external call is made.
func (v *Validator) Validate(req *models.ChatRequest) (models.SanitizedPrompt, error) {
	if req == nil || req.Message == nil {
		return "", &ValidationError{
			Kind:    KindMissingField,
			Message: "missing 'message' field in request body",
		}
	}

	msg := strings.TrimSpace(*req.Message)
	if msg == "" {
		return "", &ValidationError{
			Kind:    KindEmpty,
			Message: "message is empty",
		}
	}

	if utf8.RuneCountInString(msg) > v.maxChars {
		return "", &ValidationError{
			Kind:    KindTooLong,
			Message: fmt.Sprintf("message exceeds %d characters", v.maxChars),
		}
	}

	if !utf8.ValidString(msg) {
		return "", &ValidationError{
			Kind:    KindInvalidCharacters,
			Message: "message contains invalid UTF-8",
		}
	}

	for _, r := range msg {
		if isDisallowed(r) {
			return "", &ValidationError{
				Kind:    KindInvalidCharacters,
				Message: "message contains control characters",
			}
		}
	}

	return models.SanitizedPrompt(msg), nil
}

// isDisallowed reports whether a rune is outside the allowed set. Ordinary
// whitespace survives; other control characters (incl. NUL) are rejected.
func isDisallowed(r rune) bool {
	switch r {
	case '\n', '\r', '\t':
		return false
	}
	return unicode.IsControl(r)
}
