package errors

import "fmt"

// Error codes
const (
	CodeAppError   = "APP_ERROR"
	CodeAPIError   = "API_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeCache      = "CACHE_ERROR"
	CodeFetch      = "FETCH_ERROR"
	CodePlayback   = "PLAYBACK_ERROR"
	CodeDecode     = "DECODE_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// APIError is a non-success HTTP response from the people API.
type APIError struct {
	*AppError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

// Retryable reports whether the same request may succeed later.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

type ValidationError struct {
	*AppError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

// FetchError wraps any failure to obtain one page of people: transport,
// HTTP status or payload decoding.
type FetchError struct {
	*AppError
	Page int
}

func NewFetchError(page int, cause error) *FetchError {
	return &FetchError{
		AppError: &AppError{
			Message:    fmt.Sprintf("failed to fetch people at page %d", page),
			Code:       CodeFetch,
			StatusCode: 502,
			Context: map[string]any{
				"page": page,
			},
			Cause: cause,
		},
		Page: page,
	}
}

// PlaybackError wraps a failed music load, play or stop.
type PlaybackError struct {
	*AppError
	Operation string
}

func NewPlaybackError(operation string, cause error) *PlaybackError {
	return &PlaybackError{
		AppError: &AppError{
			Message:    fmt.Sprintf("music %s failed", operation),
			Code:       CodePlayback,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
			},
			Cause: cause,
		},
		Operation: operation,
	}
}

// DecodeError is a response body that could not be parsed.
type DecodeError struct {
	*AppError
	URL string
}

func NewDecodeError(url string, cause error) *DecodeError {
	return &DecodeError{
		AppError: &AppError{
			Message:    "malformed response payload",
			Code:       CodeDecode,
			StatusCode: 502,
			Context: map[string]any{
				"url": url,
			},
			Cause: cause,
		},
		URL: url,
	}
}
