// internal/app/system/authz/roles.go
package authz

import (
	"errors"
	"net/http"

	"github.com/homeandown/estatehub/internal/domain/models"
)

var (
	ErrSignedOut = errors.New("authz: not signed in")
	ErrNoFeed    = errors.New("authz: role has no live feed")
)

// FeedScope decides which live events the request's user may receive.
// Admins get every event (agentID ""); agents get only events tagged
// with their own ID. Sellers and buyers get ErrNoFeed.
func FeedScope(r *http.Request) (role, agentID string, err error) {
	role, _, uid, ok := UserCtx(r)
	if !ok {
		return role, "", ErrSignedOut
	}
	switch role {
	case models.UserTypeAdmin:
		return role, "", nil
	case models.UserTypeAgent:
		return role, uid.Hex(), nil
	}
	return role, "", ErrNoFeed
}
