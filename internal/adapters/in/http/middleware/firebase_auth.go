package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"storefront/internal/session"
)

// FirebaseAuthClient is the firebase auth client alias so callers can
// take *middleware.FirebaseAuthClient without importing the SDK.
type FirebaseAuthClient = fbauth.Client

// context keys use a private type to avoid collisions (SA1029).
type ctxKey struct{ name string }

var ctxKeyIdentity = ctxKey{name: "identity"}

// FirebaseAuth verifies "Authorization: Bearer <ID_TOKEN>" and stores
// the resolved identity in the request context. Tokens without an email
// claim are rejected: everything downstream is keyed by email.
type FirebaseAuth struct {
	Auth *FirebaseAuthClient
}

func (m *FirebaseAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Auth == nil {
			http.Error(w, "auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
			return
		}

		token, err := m.Auth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		id := identityFromToken(token)
		if id == nil {
			http.Error(w, "token has no email claim", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyIdentity, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentIdentity returns the identity the auth middleware resolved for
// this request, or nil.
func CurrentIdentity(r *http.Request) *session.Identity {
	id, _ := r.Context().Value(ctxKeyIdentity).(*session.Identity)
	return id
}

func identityFromToken(token *fbauth.Token) *session.Identity {
	if token == nil {
		return nil
	}

	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)

	return &session.Identity{
		UID:         token.UID,
		Email:       email,
		DisplayName: strings.TrimSpace(name),
		AvatarURL:   strings.TrimSpace(picture),
	}
}
