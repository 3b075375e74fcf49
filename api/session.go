package api

import "sync"

// Session carries the bearer token attached to authenticated requests.
// It is created by the caller and handed to NewClient.
type Session struct {
	mu    sync.RWMutex
	token string
}

func NewSession(token string) *Session {
	return &Session{token: token}
}

func (s *Session) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Clear() {
	s.Set("")
}

func (s *Session) Active() bool {
	return s.Token() != ""
}
