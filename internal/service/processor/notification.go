package processor

import (
	"fmt"

	go_json "github.com/goccy/go-json"
)

// Metadata and Payload decode only topic, notificationId and data. The
// remaining fields are kept raw so their types never fail a delivery.
type Metadata struct {
	Topic         string             `json:"topic"`
	SchemaVersion go_json.RawMessage `json:"schemaVersion,omitempty"`
	Deprecated    go_json.RawMessage `json:"deprecated,omitempty"`
}

type Payload struct {
	NotificationID      string             `json:"notificationId"`
	EventDate           go_json.RawMessage `json:"eventDate,omitempty"`
	PublishDate         go_json.RawMessage `json:"publishDate,omitempty"`
	PublishAttemptCount go_json.RawMessage `json:"publishAttemptCount,omitempty"`
	Data                go_json.RawMessage `json:"data"`
}

// Notification is an inbound event. Raw holds the body exactly as received,
// which is what the signature covers.
type Notification struct {
	Metadata     Metadata
	Notification Payload
	Raw          []byte
}

type envelope struct {
	Metadata     *Metadata `json:"metadata"`
	Notification *Payload  `json:"notification"`
}

// ParseNotification requires both the metadata and notification objects.
func ParseNotification(body []byte) (Notification, error) {
	if len(body) == 0 {
		return Notification{}, fmt.Errorf("%w: empty body", ErrInvalidNotification)
	}

	var env envelope
	if err := go_json.Unmarshal(body, &env); err != nil {
		return Notification{}, fmt.Errorf("%w: %w", ErrInvalidNotification, err)
	}
	if env.Metadata == nil {
		return Notification{}, fmt.Errorf("%w: missing metadata", ErrInvalidNotification)
	}
	if env.Notification == nil {
		return Notification{}, fmt.Errorf("%w: missing notification", ErrInvalidNotification)
	}

	return Notification{
		Metadata:     *env.Metadata,
		Notification: *env.Notification,
		Raw:          body,
	}, nil
}
