package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ussd-bridge/internal/kv"
	"ussd-bridge/internal/logger"
)

const (
	DefaultTTL = 10 * time.Minute

	sessionPrefix  = "session:"
	responsePrefix = "response:"
)

var ErrNotFound = errors.New("session: not found")

func sessionKey(sessionID string) string  { return sessionPrefix + sessionID }
func responseKey(sessionID string) string { return responsePrefix + sessionID }

// Store owns Session records. Every mutating call re-arms the TTL; reads do not.
type Store struct {
	kv  kv.Backend
	ttl time.Duration
	now func() time.Time
}

func NewStore(backend kv.Backend, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		kv:  backend,
		ttl: ttl,
		now: time.Now,
	}
}

// Create writes a fresh active session with a new StableID. An existing record
// under the same id is replaced, not merged.
func (s *Store) Create(ctx context.Context, sessionID, msisdn string) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session: missing session_id")
	}

	now := s.now().UTC()
	sess := Session{
		SessionID:         sessionID,
		MSISDN:            msisdn,
		StableID:          NewStableID(),
		State:             StateActive,
		CreatedAt:         now,
		LastInteractionAt: now,
	}

	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	logger.Info("session created", map[string]any{
		"session_id": sessionID,
		"msisdn":     msisdn,
		"stable_id":  sess.StableID,
	})

	return &sess, nil
}

// Get returns (nil, nil) when the session does not exist.
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	val, ok, err := s.kv.Get(ctx, sessionKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}

	return &sess, nil
}

// Update merges p into the stored session and refreshes LastInteractionAt and
// the TTL. It returns (nil, nil) without writing when the session is missing.
func (s *Store) Update(ctx context.Context, sessionID string, p Patch) (*Session, error) {
	current, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		logger.Warn("cannot update non-existent session", map[string]any{
			"session_id": sessionID,
		})
		return nil, nil
	}

	updated := current.apply(p, s.now().UTC())
	if err := s.save(ctx, updated); err != nil {
		return nil, err
	}

	logger.Debug("session updated", map[string]any{
		"session_id": sessionID,
	})

	return &updated, nil
}

// EnsureStableID returns the session with a StableID, generating and persisting
// one first if it has none. The write completes before this returns.
func (s *Store) EnsureStableID(ctx context.Context, sess *Session) (*Session, error) {
	if sess == nil {
		return nil, ErrNotFound
	}
	if sess.StableID != "" {
		return sess, nil
	}

	updated, err := s.Update(ctx, sess.SessionID, Patch{StableID: NewStableID()})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("session %s: %w", sess.SessionID, ErrNotFound)
	}

	logger.Debug("stable id assigned", map[string]any{
		"session_id": sess.SessionID,
		"stable_id":  updated.StableID,
	})

	return updated, nil
}

// End removes the session and any pending response. It reports whether the
// session existed and is safe to repeat.
func (s *Store) End(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.kv.Delete(ctx, sessionKey(sessionID))
	if err != nil {
		return false, fmt.Errorf("session: end: %w", err)
	}
	if _, err := s.kv.Delete(ctx, responseKey(sessionID)); err != nil {
		return false, fmt.Errorf("session: end: %w", err)
	}

	if n == 0 {
		logger.Warn("cannot end non-existent session", map[string]any{
			"session_id": sessionID,
		})
		return false, nil
	}

	logger.Info("session ended", map[string]any{
		"session_id": sessionID,
	})
	return true, nil
}

func (s *Store) save(ctx context.Context, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	if err := s.kv.Set(ctx, sessionKey(sess.SessionID), string(data), s.ttl); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}
