package domain

import "time"

// ActivityNone is the sentinel label reported when a user has no activity.
const ActivityNone = "None"

// User is a reference row populated on demand from presence events.
type User struct {
	ID          string
	DisplayName string
	Role        string
}

// Session is a half-open interval of one user performing one labeled activity.
// A zero End means the session is still open.
type Session struct {
	ID       int64
	UserID   string
	Activity string
	Start    time.Time
	End      time.Time
}

// Open reports whether the session has not been closed yet.
func (s Session) Open() bool {
	return s.End.IsZero()
}

// Duration returns the session length and whether it could be computed.
// Sessions missing either timestamp carry no duration.
func (s Session) Duration() (time.Duration, bool) {
	if s.Start.IsZero() || s.End.IsZero() {
		return 0, false
	}
	return s.End.Truncate(time.Second).Sub(s.Start.Truncate(time.Second)), true
}

// Change is one presence transition observed for a user.
type Change struct {
	UserID      string
	DisplayName string
	Role        string
	Activity    string
	ObservedAt  time.Time
}
