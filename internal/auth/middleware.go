package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const ownerKey contextKey = "owner_id"

// OwnerID returns the authenticated owner identifier from the request
// context, or "" when the request carries no valid credentials.
func OwnerID(ctx context.Context) string {
	id, _ := ctx.Value(ownerKey).(string)
	return id
}

// Require rejects requests without a valid token. Used for all writes.
func Require(j *JWT, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(j, r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ownerKey, ownerID)))
	}
}

// Optional injects the owner when a valid token is present and lets the
// request through otherwise. Read endpoints answer an absent owner with an
// empty result rather than an error.
func Optional(j *JWT, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ownerID, err := ownerFromRequest(j, r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), ownerKey, ownerID))
		}
		next(w, r)
	}
}

func ownerFromRequest(j *JWT, r *http.Request) (string, error) {
	token := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	} else if c, err := r.Cookie("access_token"); err == nil {
		token = c.Value
	}
	if token == "" {
		return "", ErrInvalidToken
	}
	return j.Verify(token)
}
