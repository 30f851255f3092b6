package services

import (
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
)

// SessionManager keeps the pending-identity reference between the
// registration step and the OTP verify step, keyed per browser session.
type SessionManager struct {
	sessions *cache.Cache
}

var sessionManagerInstance *SessionManager

// SetSessionManager sets the global session manager (call from main.go)
func SetSessionManager(sm *SessionManager) {
	sessionManagerInstance = sm
}

// GetSessionManager returns the global session manager
func GetSessionManager() *SessionManager {
	return sessionManagerInstance
}

// NewSessionManager creates a session store; pending registrations that
// never verify are evicted after 30 minutes.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: cache.New(30*time.Minute, 10*time.Minute),
	}
}

// Begin opens a new browser session for a pending identity and returns
// the session token to hand to the client.
func (sm *SessionManager) Begin(userID uint) string {
	token := uuid.NewString()
	sm.sessions.SetDefault(token, userID)
	return token
}

// PendingIdentity resolves the user waiting for OTP verification in this
// session, if any.
func (sm *SessionManager) PendingIdentity(token string) (uint, bool) {
	v, found := sm.sessions.Get(token)
	if !found {
		return 0, false
	}
	return v.(uint), true
}

// End discards the session once verification completes or is abandoned
func (sm *SessionManager) End(token string) {
	sm.sessions.Delete(token)
}
