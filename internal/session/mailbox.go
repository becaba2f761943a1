package session

import (
	"context"
	"fmt"
	"time"

	"ussd-bridge/internal/kv"
	"ussd-bridge/internal/logger"
)

// Mailbox holds at most one unconsumed chatbot reply per session.
//
// A second Put before the reply is taken replaces the first one
// (last write wins); the earlier reply is lost.
type Mailbox struct {
	kv  kv.Backend
	ttl time.Duration
}

func NewMailbox(backend kv.Backend, ttl time.Duration) *Mailbox {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Mailbox{kv: backend, ttl: ttl}
}

func (m *Mailbox) Put(ctx context.Context, sessionID, text string) error {
	if err := m.kv.Set(ctx, responseKey(sessionID), text, m.ttl); err != nil {
		return fmt.Errorf("mailbox: put: %w", err)
	}

	logger.Debug("stored chatbot response", map[string]any{
		"session_id": sessionID,
	})
	return nil
}

// TakeIfPresent reads and removes the pending reply. Absence is reported
// through ok, never as an error.
func (m *Mailbox) TakeIfPresent(ctx context.Context, sessionID string) (text string, ok bool, err error) {
	text, ok, err = m.kv.Take(ctx, responseKey(sessionID))
	if err != nil {
		return "", false, fmt.Errorf("mailbox: take: %w", err)
	}
	if ok {
		logger.Debug("retrieved chatbot response", map[string]any{
			"session_id": sessionID,
		})
	}
	return text, ok, nil
}
