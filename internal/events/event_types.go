package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated EventType = "USER_CREATED"
	EventUserUpdated EventType = "USER_UPDATED"
	EventUserDeleted EventType = "USER_DELETED"
)

// Event represents a user lifecycle event emitted by services. UserID doubles
// as the partition key on the external channel so one user's events stay
// ordered.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserEventPayload describes the affected user.
type UserEventPayload struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Details  string `json:"details,omitempty"`
}

// Notification is a message for the notifications channel, keyed by recipient.
type Notification struct {
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
