package http

import (
	"net/http"

	"talk-lmstudio/internal/domain"
)

var (
	// Success response
	Success = Status{Code: http.StatusOK, Message: []string{"Success"}}
	// BadRequest response
	BadRequest = Status{Code: http.StatusBadRequest, Message: []string{"Sorry, Not responding because of incorrect syntax"}}
	// InternalServerError response
	InternalServerError = Status{Code: http.StatusInternalServerError, Message: []string{"Internal Server Error"}}
	// BadGateway response
	BadGateway = Status{Code: http.StatusBadGateway, Message: []string{"Sorry, The model server returned an error"}}
	// ServiceUnavailable response
	ServiceUnavailable = Status{Code: http.StatusServiceUnavailable, Message: []string{"Sorry, The model server is not reachable"}}
	// GatewayTimeout response
	GatewayTimeout = Status{Code: http.StatusGatewayTimeout, Message: []string{"Sorry, The model server did not answer in time"}}
)

// ResponseBody struct - Generic HTTP response wrapper
type ResponseBody struct {
	Status Status      `json:"status,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// Status struct
type Status struct {
	Code    int      `json:"code,omitempty"`
	Message []string `json:"message,omitempty"`
}

type (
	// GenerateResponse struct - HTTP response DTO for a non-streaming generation
	GenerateResponse struct {
		Text string `json:"text"`
	}

	// StreamEvent struct - payload of one SSE data line
	StreamEvent struct {
		Text  string `json:"text,omitempty"`
		Error string `json:"error,omitempty"`
	}

	// ModelResponse struct - HTTP response DTO for a single model
	ModelResponse struct {
		ID      string `json:"id"`
		Object  string `json:"object,omitempty"`
		OwnedBy string `json:"owned_by,omitempty"`
	}
)

// withMessage returns a copy of status carrying err as its message
func withMessage(status Status, err error) Status {
	status.Message = []string{err.Error()}
	return status
}

func toModelResponses(models []domain.ModelInfo) []ModelResponse {
	data := make([]ModelResponse, 0, len(models))
	for _, m := range models {
		data = append(data, ModelResponse{ID: m.ID, Object: m.Object, OwnedBy: m.OwnedBy})
	}
	return data
}
