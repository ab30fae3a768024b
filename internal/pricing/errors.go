package pricing

import (
	"errors"
	"fmt"
)

var ErrMalformedResponse = errors.New("malformed pricing response")

// APIError is a non-2xx answer from the pricing API. Message carries the
// server's own explanation when it sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("pricing api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("pricing api returned status %d: %s", e.StatusCode, e.Message)
}

// UserMessage picks the text shown to the shopper for a failed call:
// the server-provided message if there is one, otherwise fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
