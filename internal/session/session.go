package session

import "time"

type State string

// StateActive is the only stored state: ending a session deletes its record.
const StateActive State = "active"

// Session is one USSD conversation as seen by the bridge.
type Session struct {
	SessionID         string    `json:"sessionId"`
	MSISDN            string    `json:"msisdn"`
	StableID          string    `json:"stableId"` // correlation key echoed by the chatbot platform
	State             State     `json:"state"`
	CreatedAt         time.Time `json:"createdAt"`
	LastInteractionAt time.Time `json:"lastInteractionAt"`
}

// Patch holds the fields an Update may change. Empty fields are left as they are,
// so an update can never erase a StableID.
type Patch struct {
	MSISDN   string
	StableID string
	State    State
}

func (s Session) apply(p Patch, now time.Time) Session {
	if p.MSISDN != "" {
		s.MSISDN = p.MSISDN
	}
	if p.StableID != "" {
		s.StableID = p.StableID
	}
	if p.State != "" {
		s.State = p.State
	}
	s.LastInteractionAt = now
	return s
}
