package words

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// listPrefix: woodsgames:wordlist:{list} -> set of words
	listPrefix = "woodsgames:wordlist:"
	// dictionaryKey: hash of word -> definition
	dictionaryKey = "woodsgames:dictionary"
)

// Redis stores word lists as sets and the dictionary as a hash.
type Redis struct {
	rdb *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func buildListKey(list string) string {
	return listPrefix + list
}

func (r *Redis) Contains(ctx context.Context, list, word string) (bool, error) {
	ok, err := r.rdb.SIsMember(ctx, buildListKey(list), Normalize(word)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check word list %s: %w", list, err)
	}
	return ok, nil
}

func (r *Redis) Define(ctx context.Context, word string) (string, bool, error) {
	def, err := r.rdb.HGet(ctx, dictionaryKey, Normalize(word)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up %q: %w", word, err)
	}
	return def, true, nil
}

// Import adds words to list and returns how many were new.
func (r *Redis) Import(ctx context.Context, list string, words []string) (int64, error) {
	if len(words) == 0 {
		return 0, nil
	}
	members := make([]any, len(words))
	for i, w := range words {
		members[i] = Normalize(w)
	}
	added, err := r.rdb.SAdd(ctx, buildListKey(list), members...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to import word list %s: %w", list, err)
	}
	return added, nil
}

// SetDefinition stores a definition for word.
func (r *Redis) SetDefinition(ctx context.Context, word, definition string) error {
	if err := r.rdb.HSet(ctx, dictionaryKey, Normalize(word), definition).Err(); err != nil {
		return fmt.Errorf("failed to define %q: %w", word, err)
	}
	return nil
}

// Size returns the number of words in list.
func (r *Redis) Size(ctx context.Context, list string) (int64, error) {
	n, err := r.rdb.SCard(ctx, buildListKey(list)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to size word list %s: %w", list, err)
	}
	return n, nil
}
