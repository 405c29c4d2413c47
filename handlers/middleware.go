package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/trickdeck/trickdeckbackend/models"
	"github.com/trickdeck/trickdeckbackend/repository"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// UserContextKey is the key used to store the user object in the request context.
	UserContextKey ContextKey = "user"
)

// LoadUser resolves the session's user id to a full user record and adds it
// to the request context. Anonymous requests pass through untouched; a stale
// id (deleted account) clears the session instead of erroring.
func LoadUser(sm *SessionManager, userRepo repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := sm.CurrentUserID(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := userRepo.GetByID(userID)
			if err != nil {
				log.Printf("session referenced missing user %d, signing out: %v", userID, err)
				if err := sm.SignOut(w, r); err != nil {
					log.Printf("failed to clear stale session: %v", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser redirects anonymous visitors to the login page. It should be
// mounted after LoadUser.
func RequireUser(sm *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if CurrentUser(r) == nil {
				sm.AddFlash(w, r, "warning", "You must be logged in to do that")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentUser returns the authenticated user from the request context, or
// nil for anonymous requests.
func CurrentUser(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
