package client

import (
	"sync"

	"github.com/fastygo/tasktracker/domain"
)

// AuthResult is the body of a successful register or login.
type AuthResult struct {
	Message      string            `json:"message"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	User         domain.PublicUser `json:"user"`
}

// Session holds the signed-in user's tokens and writes every change through
// to its TokenStore.
type Session struct {
	mu     sync.RWMutex
	store  TokenStore
	tokens Tokens
}

// NewSession restores whatever the store holds. A nil store keeps the session
// in memory.
func NewSession(store TokenStore) (*Session, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	tokens, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{store: store, tokens: tokens}, nil
}

// Start records a fresh sign-in.
func (s *Session) Start(res AuthResult) error {
	tokens := Tokens{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(tokens); err != nil {
		return err
	}
	s.tokens = tokens
	return nil
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.AccessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.RefreshToken
}

func (s *Session) User() domain.PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.User
}

// SetAccessToken replaces the access token after a refresh.
func (s *Session) SetAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.tokens
	next.AccessToken = token
	if err := s.store.Save(next); err != nil {
		return err
	}
	s.tokens = next
	return nil
}

// Clear forgets the tokens, in memory and in the store.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	return s.store.Clear()
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.AccessToken != ""
}
