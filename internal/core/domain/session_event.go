package domain

import "time"

// SessionEventKind names an account/session lifecycle change.
type SessionEventKind string

const (
	SessionSignup         SessionEventKind = "signup"
	SessionLogin          SessionEventKind = "login"
	SessionLogout         SessionEventKind = "logout"
	SessionLogoutAll      SessionEventKind = "logout_all"
	SessionAccountDeleted SessionEventKind = "account_deleted"
)

// SessionEvent is an audit record written asynchronously after the change happened.
type SessionEvent struct {
	UserID string
	Kind   SessionEventKind
	At     time.Time
}
