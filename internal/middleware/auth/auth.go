// Package auth restricts the API to the configured admin users.
package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"tracker/internal/core"
)

// UserIDHeader identifies the caller. It is set by the chat gateway in front
// of the API.
const UserIDHeader = "X-User-ID"

type contextKey struct{}

// User is an authorized caller and the owner they act as.
type User struct {
	ID    int64
	Owner core.Owner
}

// Authorizer checks callers against an allow-list.
type Authorizer struct {
	admins map[int64]core.Owner
}

func NewAuthorizer(admins map[int64]core.Owner) *Authorizer {
	copied := make(map[int64]core.Owner, len(admins))
	for id, owner := range admins {
		copied[id] = owner
	}
	return &Authorizer{admins: copied}
}

// Lookup returns the user for id if it is allowed.
func (a *Authorizer) Lookup(id int64) (User, bool) {
	owner, ok := a.admins[id]
	if !ok {
		return User{}, false
	}
	return User{ID: id, Owner: owner}, true
}

// Authenticate resolves the caller of r.
func (a *Authorizer) Authenticate(r *http.Request) (User, bool) {
	raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if raw == "" {
		return User{}, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return User{}, false
	}
	return a.Lookup(id)
}

// Middleware rejects unknown callers with onDenied, or a plain 403.
func (a *Authorizer) Middleware(onDenied func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := a.Authenticate(r)
			if !ok {
				if onDenied != nil {
					onDenied(w, r)
				} else {
					http.Error(w, "forbidden", http.StatusForbidden)
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), user)))
		})
	}
}

func NewContext(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// FromContext returns the user stored by Middleware.
func FromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(contextKey{}).(User)
	return user, ok
}
