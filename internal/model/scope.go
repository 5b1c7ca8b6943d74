package model

// Scope carries the identity of the user a request is acting for,
// derived from the Telegram sender.
type Scope struct {
	UserID   string // stable identifier, e.g. "telegram_123456"
	Username string // Telegram handle, may be empty
	Author   string // display author: handle, or first name when no handle exists
}
