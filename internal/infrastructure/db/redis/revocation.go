package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore records per-user token revocation instants.
// Key format: revoked:<user_id> -> unix seconds
//
// Entries expire after the token TTL, by which point every token issued
// before the revocation has expired on its own.
type RevocationStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRevocationStore(client *redis.Client, tokenTTL time.Duration) *RevocationStore {
	return &RevocationStore{client: client, ttl: tokenTTL}
}

// Revoke marks every token for userID issued up to and including the
// second of at as invalid. A later revocation always wins over an earlier one.
func (s *RevocationStore) Revoke(ctx context.Context, userID string, at time.Time) error {
	key := s.key(userID)
	current, err := s.RevokedAt(ctx, userID)
	if err != nil {
		return err
	}
	if !current.IsZero() && current.After(at) {
		return nil
	}
	if err := s.client.Set(ctx, key, at.Unix(), s.ttl).Err(); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

// RevokedAt returns the latest revocation instant for userID, or the zero
// time when there is none.
func (s *RevocationStore) RevokedAt(ctx context.Context, userID string) (time.Time, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("revocation lookup: %w", err)
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("revocation lookup: malformed value %q", raw)
	}
	return time.Unix(sec, 0).UTC(), nil
}

func (s *RevocationStore) key(userID string) string {
	return "revoked:" + userID
}
