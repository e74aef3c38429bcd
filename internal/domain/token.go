package domain

// Token is one fragment of generated text delivered to a caller.
// The final token of a generation carries no text and marks end of stream.
type Token struct {
	Text    string
	IsFinal bool

	// Err is only set on the final token handed out by channel-based
	// streaming, and reports why the generation failed.
	Err error
}

// TokenFunc receives tokens in arrival order on the calling goroutine.
type TokenFunc func(Token)

// FinalToken returns the end-of-stream sentinel.
func FinalToken() Token {
	return Token{IsFinal: true}
}

// TextToken returns a non-final token carrying text.
func TextToken(text string) Token {
	return Token{Text: text}
}
