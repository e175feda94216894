package domain

import "time"

// ContactAction names the mutation recorded by a ContactEvent.
type ContactAction string

const (
	ActionCreated ContactAction = "created"
	ActionUpdated ContactAction = "updated"
	ActionDeleted ContactAction = "deleted"
)

// ContactEvent is an audit record of a single mutation on a contact.
type ContactEvent struct {
	ContactID  string        `json:"contactId"`
	Action     ContactAction `json:"action"`
	Email      string        `json:"email,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
	RequestID  string        `json:"requestId,omitempty"`
}
