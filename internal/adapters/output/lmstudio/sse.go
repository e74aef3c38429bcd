package lmstudio

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"talk-lmstudio/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const sseTrimSet = " \t\r\n"

var (
	sseDataPrefix = []byte("data:")
	sseDoneMarker = []byte("[DONE]")

	errMalformedEvent = errors.New("malformed SSE event payload")
)

// Text locations inside a stream event, in priority order
var streamTextPaths = []string{"delta.content", "message.content", "text"}

// sseDecoder reassembles server-sent events from arbitrarily split chunks and
// emits the text they carry. It delivers exactly one final token: either on
// the [DONE] event or on Close, whichever comes first.
type sseDecoder struct {
	buf     []byte
	onToken domain.TokenFunc
	done    bool
	skipped int
}

func newSSEDecoder(onToken domain.TokenFunc) *sseDecoder {
	return &sseDecoder{onToken: onToken}
}

// Write buffers p, dispatches every complete line and keeps the incomplete
// tail for the next call. Input after [DONE] is discarded.
func (d *sseDecoder) Write(p []byte) (int, error) {
	if d.done {
		return len(p), nil
	}
	d.buf = append(d.buf, p...)

	pos := 0
	for {
		nl := bytes.IndexByte(d.buf[pos:], '\n')
		if nl < 0 {
			break
		}
		line := bytes.Trim(d.buf[pos:pos+nl], sseTrimSet)
		pos += nl + 1

		if len(line) == 0 {
			continue
		}
		d.dispatch(line)
		if d.done {
			d.buf = d.buf[:0]
			return len(p), nil
		}
	}

	n := copy(d.buf, d.buf[pos:])
	d.buf = d.buf[:n]
	return len(p), nil
}

// Done reports whether the [DONE] event was seen or the decoder was closed
func (d *sseDecoder) Done() bool {
	return d.done
}

// Close emits the final token unless [DONE] already did. An unterminated
// trailing line is discarded, as an incomplete event.
func (d *sseDecoder) Close() {
	if d.done {
		return
	}
	if len(bytes.Trim(d.buf, sseTrimSet)) > 0 {
		logrus.Debugf("Discarding unterminated SSE line of %d bytes", len(d.buf))
	}
	d.buf = nil
	d.finish()
}

func (d *sseDecoder) dispatch(line []byte) {
	text, done, err := parseSSELine(line)
	switch {
	case err != nil:
		d.skipped++
		logrus.Debugf("Skipping SSE line: %v, line: %s", err, truncate(line, 200))
	case done:
		d.finish()
	case text != "":
		d.onToken(domain.TextToken(text))
	}
}

func (d *sseDecoder) finish() {
	d.done = true
	d.onToken(domain.FinalToken())
}

// parseSSELine inspects one trimmed, non-empty SSE line.
// Returns (text, done, error) where:
//   - text: the extracted fragment, empty when the event carries none
//   - done: true if this is the [DONE] marker
//   - error: the payload is not JSON or not UTF-8 (non-fatal, caller should continue)
//
// Lines other than "data:" lines yield nothing.
func parseSSELine(line []byte) (string, bool, error) {
	if !bytes.HasPrefix(line, sseDataPrefix) {
		return "", false, nil
	}

	payload := bytes.Trim(line[len(sseDataPrefix):], sseTrimSet)
	if bytes.Equal(payload, sseDoneMarker) {
		return "", true, nil
	}
	if !gjson.ValidBytes(payload) || !utf8.Valid(payload) {
		return "", false, errMalformedEvent
	}
	return extractStreamText(payload), false, nil
}

// extractStreamText returns the text of the first present location among
// choices[0].delta.content, choices[0].message.content and choices[0].text.
// A present location holding a non-string value yields no text.
func extractStreamText(payload []byte) string {
	choice := gjson.GetBytes(payload, "choices.0")
	if !choice.IsObject() {
		return ""
	}
	for _, path := range streamTextPaths {
		value := choice.Get(path)
		if !value.Exists() {
			continue
		}
		if value.Type == gjson.String {
			return value.Str
		}
		return ""
	}
	return ""
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
