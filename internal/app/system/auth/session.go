package auth

import "strings"

// SessionUser is the signed-in user as carried in the session cookie and
// request context. Role is the user's user_type.
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is the explicit authentication state of one browser session.
type Session struct {
	User *SessionUser `json:"user"`
}

// SignedIn reports whether the session has a user.
func (s Session) SignedIn() bool { return s.User != nil }

// ActionType names a session transition.
type ActionType string

const (
	SetUser    ActionType = "SET_USER"
	ClearUser  ActionType = "CLEAR_USER"
	UpdateUser ActionType = "UPDATE_USER"
)

// UserPatch lists the fields UPDATE_USER may change. Nil fields are left
// alone.
type UserPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

// Action is one session transition.
type Action struct {
	Type  ActionType
	User  *SessionUser
	Patch UserPatch
}

// Reduce applies a to s and returns the new session. It never mutates s or
// the users it points to.
//
//   - SET_USER replaces the user (a nil user signs out).
//   - CLEAR_USER signs out.
//   - UPDATE_USER patches the current user; without one it is a no-op.
//
// Unknown actions return s unchanged.
func Reduce(s Session, a Action) Session {
	switch a.Type {
	case SetUser:
		if a.User == nil {
			return Session{}
		}
		u := *a.User
		u.Role = strings.ToLower(strings.TrimSpace(u.Role))
		return Session{User: &u}
	case ClearUser:
		return Session{}
	case UpdateUser:
		if s.User == nil {
			return s
		}
		u := *s.User
		if a.Patch.Name != nil {
			u.Name = *a.Patch.Name
		}
		if a.Patch.Email != nil {
			u.Email = *a.Patch.Email
		}
		if a.Patch.Role != nil {
			u.Role = strings.ToLower(strings.TrimSpace(*a.Patch.Role))
		}
		return Session{User: &u}
	}
	return s
}
