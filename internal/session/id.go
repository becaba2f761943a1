package session

import "github.com/google/uuid"

// NewStableID returns a random UUID used as the chatbot sender id for one session.
func NewStableID() string {
	return uuid.NewString()
}
