package events

import (
	"encoding/json"
	"time"
)

// ActivityMessage announces a successful mutation on a resource so
// downstream consumers (notifications, audit) can react. It carries
// identifiers only; consumers fetch details from the backend.
type ActivityMessage struct {
	Resource  string    `json:"resource"`
	EntityID  string    `json:"entityId,omitempty"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCreatedMessage builds the message for a freshly created record.
func NewCreatedMessage(resource, entityID, userID string) *ActivityMessage {
	return &ActivityMessage{
		Resource:  resource,
		EntityID:  entityID,
		UserID:    userID,
		Action:    "created",
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityMessageFromJSON creates a message from JSON bytes
func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
