package amqp

import (
	"encoding/json"
	"time"

	"eventdash/internal/core"
)

const TypeRegistrationCreated = "registration.created"

// RegistrationMessage announces a new sign-up. The worker looks the
// registration up by ID, so only identifying fields travel on the wire.
type RegistrationMessage struct {
	Type           string    `json:"type"`
	RegistrationID string    `json:"registration_id"`
	EventID        string    `json:"event_id"`
	Email          string    `json:"email"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewRegistrationMessage(reg core.Registration) *RegistrationMessage {
	return &RegistrationMessage{
		Type:           TypeRegistrationCreated,
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		Email:          reg.Email,
		Timestamp:      time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RegistrationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RegistrationMessageFromJSON decodes a message body.
func RegistrationMessageFromJSON(data []byte) (*RegistrationMessage, error) {
	var msg RegistrationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
