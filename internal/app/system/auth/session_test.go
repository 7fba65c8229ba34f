package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestReduce_SetUser(t *testing.T) {
	u := &SessionUser{ID: "1", Name: "Asha", Role: " Agent "}
	s := Reduce(Session{}, Action{Type: SetUser, User: u})

	require.True(t, s.SignedIn())
	assert.Equal(t, "agent", s.User.Role)
	assert.Equal(t, " Agent ", u.Role, "input user is not mutated")

	s = Reduce(s, Action{Type: SetUser})
	assert.False(t, s.SignedIn())
}

func TestReduce_ClearUser(t *testing.T) {
	s := Session{User: &SessionUser{ID: "1"}}
	assert.Equal(t, Session{}, Reduce(s, Action{Type: ClearUser}))
	assert.Equal(t, Session{}, Reduce(Session{}, Action{Type: ClearUser}))
}

func TestReduce_UpdateUser(t *testing.T) {
	orig := &SessionUser{ID: "1", Name: "Asha", Email: "a@example.com", Role: "buyer"}
	s := Session{User: orig}

	next := Reduce(s, Action{Type: UpdateUser, Patch: UserPatch{Name: strp("Asha Rao"), Role: strp("Seller")}})
	require.True(t, next.SignedIn())
	assert.Equal(t, "Asha Rao", next.User.Name)
	assert.Equal(t, "seller", next.User.Role)
	assert.Equal(t, "a@example.com", next.User.Email)
	assert.Equal(t, "Asha", orig.Name, "previous session is not mutated")

	assert.Equal(t, Session{}, Reduce(Session{}, Action{Type: UpdateUser, Patch: UserPatch{Name: strp("x")}}))
}

func TestReduce_UnknownAction(t *testing.T) {
	s := Session{User: &SessionUser{ID: "1"}}
	assert.Equal(t, s, Reduce(s, Action{Type: "LOGOUT_EVERYWHERE"}))
}
