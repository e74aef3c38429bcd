package domain

import "errors"

// LM Studio error types

var (
	// ErrModelNotSet indicates the backend has no model id configured
	ErrModelNotSet = errors.New("model id not set")

	// ErrRequestInit indicates the HTTP request could not be constructed
	ErrRequestInit = errors.New("request init failed")

	// ErrInvalidParams indicates the generate parameters failed validation
	ErrInvalidParams = errors.New("invalid generate params")

	// ErrLMStudioUnavailable indicates the LM Studio service is unavailable
	ErrLMStudioUnavailable = errors.New("lm studio service unavailable")

	// ErrLMStudioTimeout indicates a request to LM Studio timed out
	ErrLMStudioTimeout = errors.New("lm studio request timeout")

	// ErrInvalidRequest indicates an invalid request was made (4xx client errors)
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnexpectedStatus indicates a non-2xx status outside the 4xx range
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrResponseParse indicates a non-streaming response body was not valid JSON
	ErrResponseParse = errors.New("response parse error")
)
