package session

import (
	"anonmsg/internal/utils"
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process session store used in tests and
// single-node setups without Redis.
type MemoryStore struct {
	secret   string
	mu       sync.Mutex
	sessions map[string]memorySession
}

type memorySession struct {
	userID    int
	expiresAt time.Time
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore(secret string) *MemoryStore {
	return &MemoryStore{secret: secret, sessions: map[string]memorySession{}}
}

// Create mints a signed token and records its session id in memory.
func (s *MemoryStore) Create(_ context.Context, userID int) (string, error) {
	token, sessionID, err := utils.GenerateSessionToken(userID, s.secret)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.sessions[sessionID] = memorySession{userID: userID, expiresAt: time.Now().Add(utils.SessionTTL)}
	s.mu.Unlock()
	return token, nil
}

// Resolve validates the token and checks the session record is live.
func (s *MemoryStore) Resolve(_ context.Context, token string) (int, error) {
	claims, err := utils.ParseSessionToken(token, s.secret)
	if err != nil {
		return 0, ErrInvalidSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[claims.ID]
	if !ok || rec.userID != claims.UserID {
		return 0, ErrInvalidSession
	}
	if time.Now().After(rec.expiresAt) {
		delete(s.sessions, claims.ID)
		return 0, ErrInvalidSession
	}
	return rec.userID, nil
}

// Destroy revokes the session behind the token.
func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	claims, err := utils.ParseSessionToken(token, s.secret)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	delete(s.sessions, claims.ID)
	s.mu.Unlock()
	return nil
}
