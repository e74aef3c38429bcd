package http

import "talk-lmstudio/internal/domain"

type (
	// GenerateRequest struct - HTTP request DTO. Omitted sampling fields take the configured defaults.
	GenerateRequest struct {
		Prompt       string   `json:"prompt" validate:"required" form:"prompt"`
		SystemPrompt *string  `json:"system_prompt" validate:"omitempty" form:"system_prompt"`
		MaxTokens    *int     `json:"max_tokens" validate:"omitempty,gte=1" form:"max_tokens"`
		Temperature  *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2" form:"temperature"`
		TopP         *float64 `json:"top_p" validate:"omitempty,gte=0,lte=1" form:"top_p"`
		TopK         *int     `json:"top_k" validate:"omitempty,gte=0" form:"top_k"`
		MinP         *float64 `json:"min_p" validate:"omitempty,gte=0,lte=1" form:"min_p"`
		Seed         *int     `json:"seed" validate:"omitempty" form:"seed"`
		Stop         []string `json:"stop" validate:"omitempty,dive,required" form:"stop"`
		Stream       *bool    `json:"stream" validate:"omitempty" form:"stream"`
	}
)

// ToParams overlays the fields set in the request onto defaults
func (r GenerateRequest) ToParams(defaults domain.GenerateParams) domain.GenerateParams {
	params := defaults
	if r.SystemPrompt != nil {
		params.SystemPrompt = *r.SystemPrompt
	}
	if r.MaxTokens != nil {
		params.MaxTokens = *r.MaxTokens
	}
	if r.Temperature != nil {
		params.Temperature = *r.Temperature
	}
	if r.TopP != nil {
		params.TopP = *r.TopP
	}
	if r.TopK != nil {
		params.TopK = *r.TopK
	}
	if r.MinP != nil {
		params.MinP = *r.MinP
	}
	if r.Seed != nil {
		params.Seed = *r.Seed
	}
	if r.Stop != nil {
		params.Stop = r.Stop
	}
	if r.Stream != nil {
		params.Stream = *r.Stream
	}
	return params
}
