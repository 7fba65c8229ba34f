// Package auth keeps the signed-in user in a gorilla cookie session and
// exposes it to handlers through the request context.
//
// Session changes go through Reduce; SessionManager.Apply loads the cookie,
// reduces and saves.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
	userName  = "user_name"
	userEmail = "user_email"
	userRole  = "user_role"
)

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher UserFetcher
}

// UserFetcher reloads the session user from storage. It returns nil when
// the user no longer exists or may not sign in.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SetUserFetcher makes LoadSessionUser refresh the cookie's user on every
// request.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) {
	sm.fetcher = f
}

// NewSessionManager builds a cookie-backed session manager. In production
// (secure=true) cookies are Secure with SameSite=None; over plain http in
// development they use SameSite=Lax.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "estatehub-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user injected by LoadSessionUser.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// CurrentSession returns the request's session state.
func CurrentSession(r *http.Request) Session {
	u, _ := CurrentUser(r)
	return Session{User: u}
}

// WithTestUser puts u in the request context, bypassing the cookie.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// Load reads the session from the request cookie. A missing or invalid
// cookie yields an empty session.
func (sm *SessionManager) Load(r *http.Request) Session {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return Session{}
	}
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return Session{}
	}
	return Session{User: &SessionUser{
		ID:    getString(sess, userIDKey),
		Name:  getString(sess, userName),
		Email: getString(sess, userEmail),
		Role:  getString(sess, userRole),
	}}
}

// Apply reduces the request's session with a and writes the result to the
// cookie.
func (sm *SessionManager) Apply(w http.ResponseWriter, r *http.Request, a Action) (Session, error) {
	next := Reduce(sm.Load(r), a)

	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		// Get still returns a fresh session; a cookie signed with a rotated
		// key is expected, anything else is worth a louder log.
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			sm.log.Warn("session cookie invalid, using fresh session", zap.Error(err))
		} else {
			sm.log.Error("session store error, using fresh session", zap.Error(err))
		}
	}
	if next.User == nil {
		sess.Values = map[interface{}]interface{}{}
		sess.Options.MaxAge = -1
	} else {
		sess.Values[isAuthKey] = true
		sess.Values[userIDKey] = next.User.ID
		sess.Values[userName] = next.User.Name
		sess.Values[userEmail] = next.User.Email
		sess.Values[userRole] = next.User.Role
	}
	if err := sess.Save(r, w); err != nil {
		sm.log.Error("session save failed", zap.Error(err))
		return next, err
	}
	return next, nil
}

// LoadSessionUser injects the signed-in user into the request context.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s := sm.Load(r); s.User != nil {
			u := s.User
			if sm.fetcher != nil {
				u = sm.fetcher.FetchUser(r.Context(), u.ID)
			}
			if u != nil {
				r = withUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures a user is in context.
//   - HTMX: HX-Redirect to /login?return=...
//   - HTML: 303 to /login?return=...
//   - API: 401.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		unauthorized(w, r)
	})
}

// RequireRole ensures the user has one of the allowed roles. Signed-out
// requests get the RequireSignedIn treatment; wrong roles get 403 (or a
// redirect to /forbidden for browsers).
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				unauthorized(w, r)
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(r.URL.RequestURI())
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/forbidden")
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
		return
	}
	writeJSONError(w, http.StatusForbidden, "forbidden")
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
