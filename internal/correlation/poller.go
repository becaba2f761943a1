// Package correlation waits, within a fixed bound, for the chatbot reply that
// the webhook leg drops into a session's mailbox.
package correlation

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultMaxWait  = 3000 * time.Millisecond
	DefaultInterval = 200 * time.Millisecond
)

// ErrTimeout is returned when every attempt found the mailbox empty.
// It is an expected outcome, not a failure.
var ErrTimeout = errors.New("correlation: no response before deadline")

// Source is the consuming side of a mailbox.
type Source interface {
	TakeIfPresent(ctx context.Context, sessionID string) (string, bool, error)
}

type Poller struct {
	source   Source
	interval time.Duration
	attempts int
}

// NewPoller makes floor(maxWait/interval) attempts. When maxWait is shorter
// than interval that is zero, and Wait times out without looking.
func NewPoller(source Source, maxWait, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	return &Poller{
		source:   source,
		interval: interval,
		attempts: int(maxWait / interval),
	}
}

func (p *Poller) Attempts() int {
	return p.attempts
}

// Bound is the longest Wait sleeps in total.
func (p *Poller) Bound() time.Duration {
	return time.Duration(p.attempts) * p.interval
}

// Wait polls the mailbox for sessionID. It returns the reply as soon as one is
// present, ErrTimeout after the last attempt, or ctx.Err() if the caller goes away.
// Mailbox errors end the wait immediately.
func (p *Poller) Wait(ctx context.Context, sessionID string) (string, error) {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for attempt := 0; attempt < p.attempts; attempt++ {
		text, ok, err := p.source.TakeIfPresent(ctx, sessionID)
		if err != nil {
			return "", err
		}
		if ok {
			return text, nil
		}

		if attempt > 0 {
			timer.Reset(p.interval)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	return "", ErrTimeout
}
