package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

// SessionStore keeps one active session per user in a Redis hash.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func (s *SessionStore) Save(ctx context.Context, sess entity.Session) error {
	key := sessionKey(sess.UserID)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    sess.UserID,
		"sid":        sess.SessionID,
		"email":      sess.Email,
		"name":       sess.Name,
		"created_at": sess.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Get(ctx context.Context, userID string) (*entity.Session, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, repository.ErrNotFound
	}
	created, _ := time.Parse(time.RFC3339Nano, data["created_at"])
	return &entity.Session{
		UserID:    data["user_id"],
		SessionID: data["sid"],
		Email:     data["email"],
		Name:      data["name"],
		CreatedAt: created,
	}, nil
}

var _ repository.SessionRepository = (*SessionStore)(nil)
