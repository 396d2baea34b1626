package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"
)

const (
	// sessionPrefix: woodsgames:session:{id} -> session JSON
	sessionPrefix = "woodsgames:session:"
	// roomPrefix: woodsgames:room:{room}:{kind} -> zset of ids scored by updated_at
	roomPrefix = "woodsgames:room:"
)

// RedisStore keeps sessions in Redis with native key expiry and a sorted-set
// index per room and kind.
type RedisStore struct {
	rdb    *redis.Client
	clock  quartz.Clock
	logger *log.Logger
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client, clock quartz.Clock, logger *log.Logger) *RedisStore {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RedisStore{rdb: rdb, clock: clock, logger: logger.WithPrefix("session")}
}

func buildSessionKey(id string) string {
	return sessionPrefix + id
}

func buildRoomKey(room string, kind Kind) string {
	return fmt.Sprintf("%s%s:%s", roomPrefix, room, kind)
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.rdb.Get(ctx, buildSessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if s.Expired(r.clock.Now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	var expiration time.Duration
	if !s.TTL.IsZero() {
		expiration = s.TTL.Sub(r.clock.Now())
		if expiration <= 0 {
			return r.Delete(ctx, s.ID)
		}
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, buildSessionKey(s.ID), data, expiration)
	pipe.ZAdd(ctx, buildRoomKey(s.Room, s.Kind), redis.Z{
		Score:  float64(s.UpdatedAt.UnixNano()),
		Member: s.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes the session key. Index entries are pruned lazily by ListByRoom.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, buildSessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *RedisStore) ListByRoom(ctx context.Context, room string, kind Kind) ([]*Session, error) {
	roomKey := buildRoomKey(room, kind)
	ids, err := r.rdb.ZRevRange(ctx, roomKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list room: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = buildSessionKey(id)
	}
	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load room sessions: %w", err)
	}

	now := r.clock.Now()
	var (
		out   []*Session
		stale []any
	)
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var s Session
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			r.logger.Warn("Skipping unreadable session", "id", ids[i], "error", err)
			continue
		}
		if s.Expired(now) {
			continue
		}
		out = append(out, &s)
	}

	if len(stale) > 0 {
		if err := r.rdb.ZRem(ctx, roomKey, stale...).Err(); err != nil {
			r.logger.Warn("Failed to prune room index", "room", room, "kind", kind, "error", err)
		}
	}

	sortByUpdated(out)
	return out, nil
}
