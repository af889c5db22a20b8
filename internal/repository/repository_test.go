package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa-go/internal/model"
)

func TestMemoryDocumentRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryDocumentRepository()
	ctx := context.Background()

	doc := &model.Document{
		FileID:     "abc123def456",
		Filename:   "report.pdf",
		FileSize:   2048,
		ChunkCount: 3,
		Status:     model.StatusProcessed,
		UploadTime: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, doc))

	got, err := repo.Get(ctx, "abc123def456")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.Filename)
	assert.Equal(t, 3, got.ChunkCount)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestMemoryDocumentRepository_CreateUpserts(t *testing.T) {
	repo := NewMemoryDocumentRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Document{FileID: "f1", Filename: "old.txt", ChunkCount: 1}))
	require.NoError(t, repo.Create(ctx, &model.Document{FileID: "f1", Filename: "new.txt", ChunkCount: 5}))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := repo.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "new.txt", got.Filename)
	assert.Equal(t, 5, got.ChunkCount)
}

func TestMemoryDocumentRepository_ListSorted(t *testing.T) {
	repo := NewMemoryDocumentRepository()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, repo.Create(ctx, &model.Document{FileID: "c", UploadTime: base.Add(2 * time.Minute)}))
	require.NoError(t, repo.Create(ctx, &model.Document{FileID: "a", UploadTime: base}))
	require.NoError(t, repo.Create(ctx, &model.Document{FileID: "b", UploadTime: base.Add(time.Minute)}))

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0].FileID)
	assert.Equal(t, "b", docs[1].FileID)
	assert.Equal(t, "c", docs[2].FileID)
}

func TestMemoryDocumentRepository_Delete(t *testing.T) {
	repo := NewMemoryDocumentRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Document{FileID: "f1"}))
	require.NoError(t, repo.Delete(ctx, "f1"))

	_, err := repo.Get(ctx, "f1")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "f1"), ErrDocumentNotFound)
}

func TestMemorySessionRepository_AppendAndHistory(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	entry := model.HistoryEntry{
		UserMessage:       "what is this about?",
		AssistantResponse: "it is about testing",
		Timestamp:         time.Now(),
	}
	require.NoError(t, repo.Append(ctx, "s1", entry))
	require.NoError(t, repo.Append(ctx, "s1", model.HistoryEntry{UserMessage: "second"}))

	history, err := repo.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "what is this about?", history[0].UserMessage)
	assert.Equal(t, "second", history[1].UserMessage)
}

func TestMemorySessionRepository_UnknownSession(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	_, err := repo.History(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, repo.Clear(ctx, "missing"), ErrSessionNotFound)
}

func TestMemorySessionRepository_TouchCreates(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.Touch(ctx, "s1"))
	history, err := repo.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// 重复 Touch 不会重置已有会话
	require.NoError(t, repo.Append(ctx, "s1", model.HistoryEntry{UserMessage: "hello"}))
	require.NoError(t, repo.Touch(ctx, "s1"))
	history, err = repo.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestMemorySessionRepository_ClearKeepsSession(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "s1", model.HistoryEntry{UserMessage: "hello"}))
	require.NoError(t, repo.Clear(ctx, "s1"))

	history, err := repo.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
