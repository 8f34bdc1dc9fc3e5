package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/failure"
)

// classify maps a transport or API error onto the failure taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return failure.Transient(op+": deadline exceeded", err)
	}

	var fe *failure.Error
	if errors.As(err, &fe) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(op, apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyAPIError(op, apiErrPtr.Code, apiErrPtr.Message, err)
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "api key not valid") ||
		strings.Contains(lower, "api_key_invalid") ||
		strings.Contains(lower, "permission denied"):
		return failure.Auth("api key rejected", err)
	default:
		return failure.Transient(op+" failed", err)
	}
}

func classifyAPIError(op string, code int, message string, err error) error {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = fmt.Sprintf("%s failed with status %d", op, code)
	}

	switch {
	case code == 401 || code == 403:
		return failure.Auth(msg, err)
	case code == 400 && strings.Contains(strings.ToLower(msg), "api key"):
		return failure.Auth(msg, err)
	case code == 429 || code >= 500:
		return failure.Transient(msg, err)
	case code >= 400:
		return failure.Validation(msg, err)
	default:
		return failure.Transient(msg, err)
	}
}

// operationError extracts the service message from an operation's error map.
func operationError(e map[string]any) string {
	if msg, ok := e["message"].(string); ok && strings.TrimSpace(msg) != "" {
		return msg
	}
	return "Video generation failed."
}
