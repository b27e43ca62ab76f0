package mailer

import "time"

// Notification types carried on the queue.
const (
	ProfileViewed = "profile_viewed"
)

// NotificationJob is the JSON payload put on the RabbitMQ queue.
// The worker renders Type through the embedded templates when mail sending is enabled.
type NotificationJob struct {
	Type       string            `json:"type"`
	UserID     string            `json:"user_id"`
	To         string            `json:"to"`
	Name       string            `json:"name,omitempty"`
	IP         string            `json:"ip,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       map[string]string `json:"data,omitempty"`
}
