package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ayurwell-backend/internal/storage"
)

// Refresher renews an expired session.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}

// SessionStore keeps the signed-in session in durable storage and hands out
// its bearer token, refreshing it once it expires.
type SessionStore struct {
	store     storage.Store
	key       string
	refresher Refresher
	now       func() time.Time

	mu sync.Mutex
}

func NewSessionStore(store storage.Store, key string, refresher Refresher) *SessionStore {
	return &SessionStore{
		store:     store,
		key:       key,
		refresher: refresher,
		now:       time.Now,
	}
}

func (s *SessionStore) Save(session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.store.Save(s.key, data)
}

func (s *SessionStore) Load() (*Session, error) {
	data, err := s.store.Load(s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil || session.AccessToken == "" {
		return nil, ErrNoSession
	}
	return &session, nil
}

func (s *SessionStore) Clear() error {
	return s.store.Delete(s.key)
}

// Token returns a bearer token for the current session.
func (s *SessionStore) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.Load()
	if err != nil {
		return "", err
	}
	if !session.Expired(s.now()) {
		return session.AccessToken, nil
	}

	if s.refresher == nil || session.RefreshToken == "" {
		return "", ErrSessionExpired
	}
	renewed, err := s.refresher.Refresh(ctx, session.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}
	if err := s.Save(renewed); err != nil {
		return "", err
	}
	return renewed.AccessToken, nil
}
