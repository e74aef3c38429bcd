package lmstudio

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// maxErrorBodySize caps how much of an error response body is read
const maxErrorBodySize = 4096

var errInvalidJSON = errors.New("response body is not valid UTF-8 JSON")

// extractCompletionText returns choices[0].message.content, or choices[0].text
// when no message content is present, from a non-streaming response body.
// A body without choices yields empty text.
func extractCompletionText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) || !utf8.Valid(body) {
		return "", errInvalidJSON
	}

	choice := gjson.GetBytes(body, "choices.0")
	if !choice.Exists() {
		return "", nil
	}

	value := choice.Get("message.content")
	if !value.Exists() {
		value = choice.Get("text")
	}
	switch value.Type {
	case gjson.String:
		return value.Str, nil
	case gjson.Null:
		if value.Exists() {
			return "", fmt.Errorf("choice text is null")
		}
		return "", nil
	default:
		return "", fmt.Errorf("choice text is not a string: %s", value.Type)
	}
}

// extractErrorMessage reads an error response body and returns error.message
// when the body is an OpenAI-style error, the raw body text otherwise.
func extractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil || len(data) == 0 {
		return ""
	}

	if gjson.ValidBytes(data) {
		if msg := gjson.GetBytes(data, "error.message"); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str
		}
		if msg := gjson.GetBytes(data, "error"); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str
		}
	}
	return truncate(data, 200)
}
