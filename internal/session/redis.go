// internal/session/redis.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	commonerrors "marvetti-onboarding/internal/common/errors"
	"marvetti-onboarding/internal/common/logger"
	"marvetti-onboarding/internal/models"
)

// RedisStore keeps each session as one JSON document under
// {prefix}{sessionID} with a rolling TTL.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    logger.Logger
}

func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration, log logger.Logger) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "marvetti:session:"
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    log,
	}
}

func (s *RedisStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*models.ApplicationState, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, commonerrors.NewSessionNotFoundError(sessionID)
	}
	if err != nil {
		return nil, commonerrors.NewSessionWriteFailedError(err)
	}

	var state models.ApplicationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		s.logger.Warn("Discarding corrupt session document", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, commonerrors.NewSessionDecodeFailedError(err)
	}

	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, state *models.ApplicationState) error {
	state.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(state)
	if err != nil {
		return commonerrors.NewSessionWriteFailedError(err)
	}

	if err := s.client.Set(ctx, s.key(state.SessionID), raw, s.ttl).Err(); err != nil {
		return commonerrors.NewSessionWriteFailedError(err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return commonerrors.NewSessionWriteFailedError(err)
	}
	return nil
}
