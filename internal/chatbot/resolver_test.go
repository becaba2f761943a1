package chatbot

import (
	"errors"
	"testing"
)

func TestResolveText(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		text   string
		source string
	}{
		{
			name:   "message body text",
			body:   `{"callbackData":{"sessionId":"s1"},"message":{"body":{"text":"hello"}}}`,
			text:   "hello",
			source: "message.body.text",
		},
		{
			name:   "message body wins over content",
			body:   `{"callbackData":{"sessionId":"s1"},"content":{"body":{"text":"second"}},"message":{"body":{"text":"first"}}}`,
			text:   "first",
			source: "message.body.text",
		},
		{
			name:   "content body text",
			body:   `{"callbackData":{"sessionId":"s1"},"content":{"body":{"type":"TEXT","text":"menu"}}}`,
			text:   "menu",
			source: "content.body.text",
		},
		{
			name:   "flat content text",
			body:   `{"callbackData":{"sessionId":"s1"},"content":{"text":"flat"}}`,
			text:   "flat",
			source: "content.text",
		},
		{
			name:   "content message string",
			body:   `{"callbackData":{"sessionId":"s1"},"content":{"message":"as message"}}`,
			text:   "as message",
			source: "content.message",
		},
		{
			name:   "plain string content",
			body:   `{"callbackData":{"sessionId":"s1"},"content":"plain string"}`,
			text:   "plain string",
			source: "content",
		},
		{
			name:   "message text",
			body:   `{"callbackData":{"sessionId":"s1"},"message":{"text":"direct"}}`,
			text:   "direct",
			source: "message.text",
		},
		{
			name:   "message string",
			body:   `{"callbackData":{"sessionId":"s1"},"message":"just a string"}`,
			text:   "just a string",
			source: "message",
		},
		{
			name:   "scan finds first string field in document order",
			body:   `{"callbackData":{"sessionId":"s1"},"content":{"count":3,"zeta":"z first","alpha":"a second"}}`,
			text:   "z first",
			source: "content.zeta",
		},
		{
			name:   "scan finds nested text",
			body:   `{"callbackData":{"sessionId":"s1"},"content":{"payload":{"text":"nested"}}}`,
			text:   "nested",
			source: "content.payload.text",
		},
		{
			name:   "empty strings are skipped",
			body:   `{"callbackData":{"sessionId":"s1"},"message":{"body":{"text":""}},"content":{"text":"","other":"used"}}`,
			text:   "used",
			source: "content.other",
		},
		{
			name:   "unrecognised content falls back",
			body:   `{"callbackData":{"sessionId":"s1"},"content":{"items":[1,2],"n":4}}`,
			text:   FallbackText,
			source: "fallback",
		},
		{
			name:   "no content at all falls back",
			body:   `{"callbackData":{"sessionId":"s1"}}`,
			text:   FallbackText,
			source: "fallback",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cb, err := Resolve([]byte(tc.body))
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if cb.SessionID != "s1" {
				t.Errorf("SessionID = %q, want s1", cb.SessionID)
			}
			if cb.Text != tc.text {
				t.Errorf("Text = %q, want %q", cb.Text, tc.text)
			}
			if cb.Source != tc.source {
				t.Errorf("Source = %q, want %q", cb.Source, tc.source)
			}
			if cb.Defaulted() != (tc.source == "fallback") {
				t.Errorf("Defaulted() = %v", cb.Defaulted())
			}
		})
	}
}

func TestResolveSessionIDSources(t *testing.T) {
	cases := map[string]string{
		"callbackData":    `{"callbackData":{"sessionId":"abc","msisdn":"255"},"content":"x"}`,
		"metadata":        `{"metadata":{"sessionId":"abc","msisdn":"255"},"content":"x"}`,
		"responseWebhook": `{"responseWebhook":{"callbackData":{"sessionId":"abc","msisdn":"255"}},"content":"x"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cb, err := Resolve([]byte(body))
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if cb.SessionID != "abc" {
				t.Errorf("SessionID = %q, want abc", cb.SessionID)
			}
			if cb.MSISDN != "255" {
				t.Errorf("MSISDN = %q, want 255", cb.MSISDN)
			}
		})
	}
}

func TestResolveSessionIDVerbatim(t *testing.T) {
	cb, err := Resolve([]byte(`{"callbackData":{"sessionId":" s1 "},"content":"x"}`))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cb.SessionID != " s1 " {
		t.Errorf("SessionID = %q, want %q", cb.SessionID, " s1 ")
	}
}

func TestResolveNumericSessionID(t *testing.T) {
	cb, err := Resolve([]byte(`{"callbackData":{"sessionId":12345678901234567890},"content":"x"}`))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cb.SessionID != "12345678901234567890" {
		t.Errorf("SessionID = %q", cb.SessionID)
	}
}

func TestResolveMissingSessionID(t *testing.T) {
	bodies := []string{
		`{"content":{"body":{"text":"orphan"}}}`,
		`{"callbackData":{"sessionId":""},"content":"x"}`,
		`{"callbackData":{"test":true}}`,
		`[1,2,3]`,
		`not json`,
		``,
	}
	for _, body := range bodies {
		_, err := Resolve([]byte(body))
		if !errors.Is(err, ErrMissingSessionID) {
			t.Errorf("Resolve(%q) error = %v, want ErrMissingSessionID", body, err)
		}
	}
}
