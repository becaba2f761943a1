package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ussd-bridge/internal/config"
	"ussd-bridge/internal/logger"
	"ussd-bridge/internal/session"
)

const defaultTimeout = 5 * time.Second

// StableIDs assigns and persists a session's correlation id.
type StableIDs interface {
	EnsureStableID(ctx context.Context, sess *session.Session) (*session.Session, error)
}

type Options struct {
	BaseURL     string
	APIKey      string
	Destination string
	Timeout     time.Duration
}

// Ack is the platform's reply to an accepted message.
type Ack struct {
	StatusCode int
	Body       json.RawMessage
}

// Client is the outbound gateway to the chatbot platform.
type Client struct {
	baseURL     string
	apiKey      string
	destination string
	httpClient  *http.Client
	sessions    StableIDs
}

func New(opts Options, sessions StableIDs) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      strings.TrimSpace(opts.APIKey),
		destination: strings.TrimSpace(opts.Destination),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		sessions: sessions,
	}
}

// Send forwards one user turn for sess. If the session has no stable id yet,
// one is assigned and persisted before the request goes out, so a reply can
// never reference an id the store does not know.
func (c *Client) Send(ctx context.Context, sess *session.Session, text string) (*Ack, error) {
	if err := c.checkConfig(); err != nil {
		logger.Error("chatbot not configured", map[string]any{
			"session_id": sess.SessionID,
			"error":      err.Error(),
		})
		return nil, err
	}

	sess, err := c.sessions.EnsureStableID(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("chatbot: assign stable id: %w", err)
	}

	logger.Info("sending message to chatbot", map[string]any{
		"session_id": sess.SessionID,
		"msisdn":     sess.MSISDN,
		"stable_id":  sess.StableID,
	})

	msg := newInboundMessage(sess.StableID, c.destination, text, map[string]any{
		"sessionId": sess.SessionID,
		"msisdn":    sess.MSISDN,
	})

	ack, err := c.post(ctx, msg)
	if err != nil {
		logger.Error("error sending to chatbot", map[string]any{
			"session_id": sess.SessionID,
			"error":      err.Error(),
		})
		return nil, err
	}

	return ack, nil
}

// SendTest posts a message that is not tied to any session.
func (c *Client) SendTest(ctx context.Context, sender, text string) (*Ack, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}
	if sender == "" {
		sender = "test-sender-uuid"
	}
	if text == "" {
		text = "Test message"
	}

	return c.post(ctx, newInboundMessage(sender, c.destination, text, map[string]any{
		"test": true,
	}))
}

func (c *Client) checkConfig() error {
	if c.apiKey == "" {
		return &ConfigError{Field: "API key"}
	}
	if c.destination == "" {
		return &ConfigError{Field: "Destination ID"}
	}
	return nil
}

func (c *Client) post(ctx context.Context, msg InboundMessage) (*Ack, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+inboundPath, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	logger.Debug("outgoing request to chatbot platform", map[string]any{
		"url":           req.URL.String(),
		"authorization": config.Mask(c.apiKey),
		"payload":       msg,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max body
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}
	if resp.StatusCode >= 400 {
		return nil, &TransportError{Err: &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}}
	}

	logger.Debug("response from chatbot platform", map[string]any{
		"status": resp.StatusCode,
	})

	ack := &Ack{StatusCode: resp.StatusCode}
	if json.Valid(respBody) {
		ack.Body = respBody
	}
	return ack, nil
}

// errorMessage pulls the platform's error text out of a failure body when it has one.
func errorMessage(body []byte) string {
	var apiErr struct {
		RequestError struct {
			ServiceException struct {
				Text string `json:"text"`
			} `json:"serviceException"`
		} `json:"requestError"`
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		if t := apiErr.RequestError.ServiceException.Text; t != "" {
			return t
		}
		if apiErr.Error != "" {
			return apiErr.Error
		}
	}
	return string(body)
}
