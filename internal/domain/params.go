package domain

// Default sampling configuration for a generation
const (
	DefaultMaxTokens   = 256
	DefaultTemperature = 0.7
	DefaultTopK        = 40
	DefaultTopP        = 0.95
	DefaultMinP        = 0.05
	DefaultSeed        = -1
)

// GenerateParams holds the sampling configuration of a single generation.
// A negative Seed means no seed is sent; an empty Stop means no stop sequences.
type GenerateParams struct {
	MaxTokens    int      `json:"max_tokens" validate:"gte=1"`
	Temperature  float64  `json:"temperature" validate:"gte=0,lte=2"`
	TopK         int      `json:"top_k" validate:"gte=0"`
	TopP         float64  `json:"top_p" validate:"gte=0,lte=1"`
	MinP         float64  `json:"min_p" validate:"gte=0,lte=1"`
	Seed         int      `json:"seed"`
	Stream       bool     `json:"stream"`
	SystemPrompt string   `json:"system_prompt"`
	Stop         []string `json:"stop" validate:"omitempty,dive,required"`
}

// DefaultGenerateParams returns the stock sampling configuration
func DefaultGenerateParams() GenerateParams {
	return GenerateParams{
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		TopK:        DefaultTopK,
		TopP:        DefaultTopP,
		MinP:        DefaultMinP,
		Seed:        DefaultSeed,
		Stream:      true,
	}
}

// HasSeed reports whether a seed should be sent with the request
func (p GenerateParams) HasSeed() bool {
	return p.Seed >= 0
}
