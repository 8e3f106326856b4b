package session

import (
	"anonmsg/internal/utils"
	"context" // Context for Redis operations
	"strconv" // User id encoding

	"github.com/redis/go-redis/v9" // Redis client
)

// RedisStore keeps one key per live session with a TTL matching the
// token expiry, so abandoned sessions age out on their own.
type RedisStore struct {
	client *redis.Client // Redis connection
	secret string        // Token signing secret
}

// NewRedisStore returns a session store backed by the given client
func NewRedisStore(client *redis.Client, secret string) *RedisStore {
	return &RedisStore{client: client, secret: secret}
}

// sessionKey builds the Redis key for a session id
func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// Create mints a signed token and records its session id in Redis
func (s *RedisStore) Create(ctx context.Context, userID int) (string, error) {
	token, sessionID, err := utils.GenerateSessionToken(userID, s.secret) // Mint the token
	if err != nil {
		return "", err // Signing failed
	}
	// Record the session with the same lifetime as the token
	if err := s.client.Set(ctx, sessionKey(sessionID), strconv.Itoa(userID), utils.SessionTTL).Err(); err != nil {
		return "", err // Session not recorded, token is unusable
	}
	return token, nil
}

// Resolve validates the token signature and checks the session record
func (s *RedisStore) Resolve(ctx context.Context, token string) (int, error) {
	claims, err := utils.ParseSessionToken(token, s.secret) // Validate signature and expiry
	if err != nil {
		return 0, ErrInvalidSession
	}
	val, err := s.client.Get(ctx, sessionKey(claims.ID)).Result() // Look up the session record
	if err == redis.Nil {
		return 0, ErrInvalidSession // Revoked or expired session
	} else if err != nil {
		return 0, err // Redis unavailable
	}
	userID, err := strconv.Atoi(val) // Decode the stored user id
	if err != nil || userID != claims.UserID {
		return 0, ErrInvalidSession // Record does not match the token
	}
	return userID, nil
}

// Destroy deletes the session record so the token stops resolving
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	claims, err := utils.ParseSessionToken(token, s.secret) // Only valid tokens map to a record
	if err != nil {
		return nil // Nothing to revoke
	}
	return s.client.Del(ctx, sessionKey(claims.ID)).Err() // Delete the session key
}
