package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"docqa-go/internal/model"
)

const sessionKeyPrefix = "docqa:session:"

// redisSessionRepository 把会话以 JSON 形式保存在 Redis 中，
// 每次写入刷新过期时间，历史条数可按配置截断。
type redisSessionRepository struct {
	client     *redis.Client
	ttl        time.Duration
	maxHistory int
}

// NewRedisSessionRepository 创建 Redis 会话存储。maxHistory 大于 0 时
// 只保留最近的 maxHistory 条问答记录。
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration, maxHistory int) SessionRepository {
	return &redisSessionRepository{client: client, ttl: ttl, maxHistory: maxHistory}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// get 读取会话, 不存在时返回 (nil, nil)。
func (r *redisSessionRepository) get(ctx context.Context, sessionID string) (*model.Session, error) {
	jsonData, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	var session model.Session
	if err := json.Unmarshal([]byte(jsonData), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *redisSessionRepository) save(ctx context.Context, session *model.Session) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) Touch(ctx context.Context, sessionID string) error {
	session, err := r.get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return r.save(ctx, &model.Session{ID: sessionID, CreatedAt: time.Now()})
	}
	return r.client.Expire(ctx, sessionKey(sessionID), r.ttl).Err()
}

func (r *redisSessionRepository) Append(ctx context.Context, sessionID string, entry model.HistoryEntry) error {
	session, err := r.get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		session = &model.Session{ID: sessionID, CreatedAt: time.Now()}
	}
	session.Entries = append(session.Entries, entry)
	if r.maxHistory > 0 && len(session.Entries) > r.maxHistory {
		session.Entries = session.Entries[len(session.Entries)-r.maxHistory:]
	}
	return r.save(ctx, session)
}

func (r *redisSessionRepository) History(ctx context.Context, sessionID string) ([]model.HistoryEntry, error) {
	session, err := r.get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session.Entries, nil
}

func (r *redisSessionRepository) Clear(ctx context.Context, sessionID string) error {
	session, err := r.get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	session.Entries = nil
	return r.save(ctx, session)
}

func (r *redisSessionRepository) Count(ctx context.Context) (int64, error) {
	keys, err := r.client.Keys(ctx, sessionKeyPrefix+"*").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to scan session keys: %w", err)
	}
	return int64(len(keys)), nil
}
