package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/trickdeck/trickdeckbackend/crud"
)

const (
	sessionName = "trickdeck_session"
	userIDKey   = "user_id"
	flashesKey  = "app_flashes"
	csrfSeedKey = "csrf_seed"
)

func init() {
	gob.Register(crud.Flash{})
	gob.Register([]crud.Flash{})
}

// SessionManager wraps the cookie store and owns everything stored in it:
// the signed-in user id, flash messages, and per-action CSRF tokens.
type SessionManager struct {
	store *sessions.CookieStore
}

func NewSessionManager(secret string, secure bool) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

func (sm *SessionManager) session(r *http.Request) *sessions.Session {
	// Get never fails fatally; a corrupt cookie yields a fresh session
	sess, err := sm.store.Get(r, sessionName)
	if err != nil {
		log.Printf("session decode failed, issuing fresh session: %v", err)
	}
	return sess
}

func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID uint) error {
	sess := sm.session(r)
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess := sm.session(r)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// CurrentUserID returns the signed-in user id, or false for anonymous visitors.
func (sm *SessionManager) CurrentUserID(r *http.Request) (uint, bool) {
	sess := sm.session(r)
	id, ok := sess.Values[userIDKey].(uint)
	return id, ok
}

func (sm *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, level, message string) {
	sm.AddFlashes(w, r, []crud.Flash{{Level: level, Message: message}})
}

func (sm *SessionManager) AddFlashes(w http.ResponseWriter, r *http.Request, flashes []crud.Flash) {
	if len(flashes) == 0 {
		return
	}
	sess := sm.session(r)
	existing, _ := sess.Values[flashesKey].([]crud.Flash)
	sess.Values[flashesKey] = append(existing, flashes...)
	if err := sess.Save(r, w); err != nil {
		log.Printf("failed to persist flashes: %v", err)
	}
}

// PopFlashes drains pending flash messages so each is shown exactly once.
func (sm *SessionManager) PopFlashes(w http.ResponseWriter, r *http.Request) []crud.Flash {
	sess := sm.session(r)
	flashes, _ := sess.Values[flashesKey].([]crud.Flash)
	if len(flashes) == 0 {
		return nil
	}
	delete(sess.Values, flashesKey)
	if err := sess.Save(r, w); err != nil {
		log.Printf("failed to clear flashes: %v", err)
	}
	return flashes
}

// IssueCSRF returns the token protecting a specific action on a specific
// entity, e.g. the delete button for figure 12. Tokens are derived from a
// single per-session seed, so issuing one per gallery row adds nothing to
// the cookie.
func (sm *SessionManager) IssueCSRF(w http.ResponseWriter, r *http.Request, action string, id uint) string {
	sess := sm.session(r)
	seed, ok := sess.Values[csrfSeedKey].(string)
	if !ok || seed == "" {
		seed = uuid.NewString()
		sess.Values[csrfSeedKey] = seed
		if err := sess.Save(r, w); err != nil {
			log.Printf("failed to persist CSRF seed: %v", err)
		}
	}
	return deriveCSRF(seed, action, id)
}

// Verify implements crud.CSRFVerifier against the _token form value. A
// session without a seed never verifies; Verify must not mint one.
func (sm *SessionManager) Verify(r *http.Request, action string, id uint) bool {
	sess := sm.session(r)
	seed, ok := sess.Values[csrfSeedKey].(string)
	if !ok || seed == "" {
		return false
	}
	expected := deriveCSRF(seed, action, id)
	return hmac.Equal([]byte(r.PostFormValue("_token")), []byte(expected))
}

func deriveCSRF(seed, action string, id uint) string {
	mac := hmac.New(sha256.New, []byte(seed))
	fmt.Fprintf(mac, "%s.%d", action, id)
	return hex.EncodeToString(mac.Sum(nil))
}

var _ crud.CSRFVerifier = (*SessionManager)(nil)
