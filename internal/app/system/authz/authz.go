// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/homeandown/estatehub/internal/app/system/auth"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false, so ok=true always means a valid
// ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.UserTypeAdmin
}

// IsAgent reports whether the current request's user is an agent.
func IsAgent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.UserTypeAgent
}

// IsSeller reports whether the current request's user is a seller.
func IsSeller(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.UserTypeSeller
}

// AgentScope returns the agent whose data the request may see. Agents
// are pinned to themselves; admins may pass ?agent_id= to look at any
// agent. ok is false when no agent can be determined.
func AgentScope(r *http.Request) (primitive.ObjectID, bool) {
	role, _, id, ok := UserCtx(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	switch role {
	case models.UserTypeAgent:
		return id, true
	case models.UserTypeAdmin:
		hex := strings.TrimSpace(r.URL.Query().Get("agent_id"))
		if hex == "" {
			return primitive.NilObjectID, false
		}
		oid, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return primitive.NilObjectID, false
		}
		return oid, true
	}
	return primitive.NilObjectID, false
}
