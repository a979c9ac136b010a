package api

import "sync"

// TokenSource supplies the host-provided init data attached to every call.
// An empty token means no header is sent.
type TokenSource interface {
	Token() string
}

type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// SessionToken is a TokenSource that can be replaced at runtime, e.g. when
// the host hands the view a fresh init payload.
type SessionToken struct {
	mu    sync.RWMutex
	token string
}

func NewSessionToken(initial string) *SessionToken {
	return &SessionToken{token: initial}
}

func (s *SessionToken) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *SessionToken) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}
