package transcriber

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConfiguration means the client cannot be used as configured:
	// missing credentials or an unknown provider.
	ErrConfiguration = errors.New("transcription not configured")
	// ErrServiceUnavailable covers transport failures, timeouts and
	// overloaded or rate-limited services.
	ErrServiceUnavailable = errors.New("transcription service unavailable")
	// ErrService is an error status returned by the service.
	ErrService = errors.New("transcription service error")
)

// ServiceError is a non-2xx answer from the service. It matches ErrService,
// ErrServiceUnavailable as well for 429 and 5xx statuses and
// ErrConfiguration for a rejected key.
type ServiceError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, body)
}

func (e *ServiceError) Is(target error) bool {
	switch target {
	case ErrService:
		return true
	case ErrServiceUnavailable:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	case ErrConfiguration:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

func unavailable(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrServiceUnavailable, provider, err)
}
