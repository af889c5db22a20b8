package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"docqa-go/internal/model"
)

// ErrSessionNotFound 表示指定 session_id 的会话不存在。
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository 定义会话历史存储的操作接口。
type SessionRepository interface {
	// Touch 确保会话存在, 不存在时以当前时间创建。
	Touch(ctx context.Context, sessionID string) error
	// Append 追加一条问答记录, 会话不存在时隐式创建。
	Append(ctx context.Context, sessionID string, entry model.HistoryEntry) error
	History(ctx context.Context, sessionID string) ([]model.HistoryEntry, error)
	// Clear 清空会话历史但保留会话本身。
	Clear(ctx context.Context, sessionID string) error
	Count(ctx context.Context) (int64, error)
}

// memorySessionRepository 把会话保存在进程内存中，是默认实现。
type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewMemorySessionRepository 创建内存会话存储。
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{sessions: make(map[string]*model.Session)}
}

func (r *memorySessionRepository) Touch(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		r.sessions[sessionID] = &model.Session{ID: sessionID, CreatedAt: time.Now()}
	}
	return nil
}

func (r *memorySessionRepository) Append(_ context.Context, sessionID string, entry model.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		session = &model.Session{ID: sessionID, CreatedAt: time.Now()}
		r.sessions[sessionID] = session
	}
	session.Entries = append(session.Entries, entry)
	return nil
}

func (r *memorySessionRepository) History(_ context.Context, sessionID string) ([]model.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return append([]model.HistoryEntry(nil), session.Entries...), nil
}

func (r *memorySessionRepository) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	session.Entries = nil
	return nil
}

func (r *memorySessionRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.sessions)), nil
}
