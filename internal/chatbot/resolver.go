package chatbot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// FallbackText is what the user sees when a callback carries no usable text.
const FallbackText = "We are experiencing technical issues. Please try again later."

// ErrMissingSessionID means the callback cannot be correlated to any session.
var ErrMissingSessionID = errors.New("chatbot: missing sessionId in callbackData")

// Callback is a resolved webhook delivery.
type Callback struct {
	SessionID string
	MSISDN    string
	Text      string
	// Source names where Text was found, or "fallback".
	Source string
}

// Defaulted reports whether Text is FallbackText because nothing usable was found.
func (c Callback) Defaulted() bool {
	return c.Source == sourceFallback
}

const sourceFallback = "fallback"

var sessionIDPaths = [][]string{
	{"callbackData", "sessionId"},
	{"metadata", "sessionId"},
	{"responseWebhook", "callbackData", "sessionId"},
}

var msisdnPaths = [][]string{
	{"callbackData", "msisdn"},
	{"metadata", "msisdn"},
	{"responseWebhook", "callbackData", "msisdn"},
}

// textPaths are tried in order; the platform has sent each of these shapes.
var textPaths = []struct {
	source string
	path   []string
}{
	{"message.body.text", []string{"message", "body", "text"}},
	{"content.body.text", []string{"content", "body", "text"}},
	{"content.text", []string{"content", "text"}},
	{"content.message", []string{"content", "message"}},
	{"content", []string{"content"}},
	{"message.text", []string{"message", "text"}},
	{"message", []string{"message"}},
}

// Resolve extracts the session id and reply text from a webhook body.
//
// Once a session id is found Resolve never fails: an unrecognised content
// shape yields FallbackText so the waiting USSD leg still gets an answer.
func Resolve(raw []byte) (Callback, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return Callback{}, fmt.Errorf("%w: %v", ErrMissingSessionID, err)
	}

	cb := Callback{
		SessionID: firstString(doc, sessionIDPaths),
		MSISDN:    firstString(doc, msisdnPaths),
	}
	if cb.SessionID == "" {
		return Callback{}, ErrMissingSessionID
	}

	for _, tp := range textPaths {
		if s, ok := nonEmptyString(lookup(doc, tp.path...)); ok {
			cb.Text, cb.Source = s, tp.source
			return cb, nil
		}
	}

	if key, s, ok := scanContent(raw); ok {
		cb.Text, cb.Source = s, "content."+key
		return cb, nil
	}

	cb.Text, cb.Source = FallbackText, sourceFallback
	return cb, nil
}

func lookup(v any, path ...string) any {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

func nonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func firstString(doc map[string]any, paths [][]string) string {
	for _, p := range paths {
		switch v := lookup(doc, p...).(type) {
		case string:
			// used verbatim: the value must match the key it was stored under
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// scanContent walks the fields of the top-level "content" object in document
// order and returns the first non-empty string, or the first nested {text}.
func scanContent(raw []byte) (key, text string, ok bool) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return "", "", false
	}
	content, found := top["content"]
	if !found {
		return "", "", false
	}

	dec := json.NewDecoder(bytes.NewReader(content))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return "", "", false
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", "", false
		}
		k, _ := tok.(string)

		var field json.RawMessage
		if err := dec.Decode(&field); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", "", false
		}

		var s string
		if json.Unmarshal(field, &s) == nil && s != "" {
			return k, s, true
		}

		var nested struct {
			Text any `json:"text"`
		}
		if json.Unmarshal(field, &nested) == nil {
			if s, ok := nonEmptyString(nested.Text); ok {
				return k + ".text", s, true
			}
		}
	}

	return "", "", false
}
