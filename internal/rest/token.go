package rest

import "sync"

// TokenProvider supplies the session token attached to every request. The
// token itself is owned by whatever session mechanism the application uses;
// the transport only consumes it.
type TokenProvider interface {
	Token() (string, error)
}

// TokenFunc adapts a function to the TokenProvider interface.
type TokenFunc func() (string, error)

func (f TokenFunc) Token() (string, error) { return f() }

// StaticToken is a fixed token, handy for tests and one-off tools.
type StaticToken string

func (s StaticToken) Token() (string, error) { return string(s), nil }

// SessionStore is a mutable token holder safe for concurrent use. Login flows
// write into it, the transport reads from it.
type SessionStore struct {
	mu    sync.RWMutex
	token string
}

func (s *SessionStore) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *SessionStore) Clear() {
	s.Set("")
}

func (s *SessionStore) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}
