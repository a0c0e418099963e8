package configurator

import (
	"context"
	"time"

	"mountify/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const sessionKeyPrefix = "bookingcfg:"

// SessionStore persists configurator aggregates in Redis, one encoded value
// per session, with a sliding TTL refreshed on every save.
type SessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewSessionStore returns a store writing through the given Redis client.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{Client: client, TTL: ttl}
}

// Load fetches and decodes the aggregate for sessionID. A missing entry and a
// malformed one both come back as nil: either way there is no usable prior
// session. Only a transport failure is returned as an error.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*Aggregate, error) {
	raw, err := s.Client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	agg := Decode(raw)
	if agg == nil {
		utils.GetLogger().Warn("discarding malformed persisted session",
			zap.String("sessionID", sessionID))
	}
	return agg, nil
}

// Save encodes and writes the aggregate. Persistence is best-effort: a failed
// write is logged and swallowed because losing the latest increment of form
// state is recoverable, while blocking the flow on it is not.
func (s *SessionStore) Save(ctx context.Context, sessionID string, agg *Aggregate) {
	raw, err := Encode(agg)
	if err != nil {
		utils.GetLogger().Warn("failed to encode session",
			zap.String("sessionID", sessionID), zap.Error(err))
		return
	}
	if err := s.Client.Set(ctx, sessionKeyPrefix+sessionID, raw, s.TTL).Err(); err != nil {
		utils.GetLogger().Warn("failed to persist session",
			zap.String("sessionID", sessionID), zap.Error(err))
	}
}

// Delete discards the session entry.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.Client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
