package entity

import "time"

// Session is the server-side record backing an issued bearer token.
type Session struct {
	UserID    string
	SessionID string
	Email     string
	Name      string
	CreatedAt time.Time
}
