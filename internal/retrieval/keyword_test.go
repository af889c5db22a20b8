package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa-go/internal/model"
)

func addDoc(t *testing.T, store Store, fileID, filename string, chunks ...string) {
	t.Helper()
	doc := &model.Document{FileID: fileID, Filename: filename}
	require.NoError(t, store.Add(context.Background(), doc, chunks))
}

func TestKeywordSearch_Scoring(t *testing.T) {
	store := NewKeywordStore(false)
	addDoc(t, store, "f1", "ml.txt",
		"machine learning is fun",
		"basics of cooking",
		"completely unrelated text",
	)

	results, err := store.Search(context.Background(), "machine learning basics", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "machine learning is fun", results[0].Text)
	assert.InDelta(t, 2.0/3.0, results[0].Score, 1e-9)
	assert.Equal(t, "basics of cooking", results[1].Text)
	assert.InDelta(t, 1.0/3.0, results[1].Score, 1e-9)
}

func TestKeywordSearch_CaseInsensitive(t *testing.T) {
	store := NewKeywordStore(false)
	addDoc(t, store, "f1", "doc.txt", "The Quick Brown Fox")

	results, err := store.Search(context.Background(), "quick FOX", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestKeywordSearch_ZeroScores(t *testing.T) {
	store := NewKeywordStore(false)
	addDoc(t, store, "f1", "doc.txt", "alpha beta", "gamma delta")

	results, err := store.Search(context.Background(), "alpha", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	withZero := NewKeywordStore(true)
	addDoc(t, withZero, "f1", "doc.txt", "alpha beta", "gamma delta")

	results, err = withZero.Search(context.Background(), "alpha", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 0.0, results[1].Score)
}

func TestKeywordSearch_EmptyQuery(t *testing.T) {
	store := NewKeywordStore(false)
	addDoc(t, store, "f1", "doc.txt", "alpha beta")

	results, err := store.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestKeywordSearch_TopK(t *testing.T) {
	store := NewKeywordStore(false)
	addDoc(t, store, "f1", "doc.txt",
		"apple one", "apple two", "apple three", "apple four", "apple five",
	)

	results, err := store.Search(context.Background(), "apple", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestKeywordSearch_StableTieOrder(t *testing.T) {
	store := NewKeywordStore(false)
	addDoc(t, store, "f1", "first.txt", "apple red")
	addDoc(t, store, "f2", "second.txt", "apple green")

	results, err := store.Search(context.Background(), "apple", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// 同分时保持入库顺序
	assert.Equal(t, "f1", results[0].FileID)
	assert.Equal(t, "f2", results[1].FileID)
}

func TestKeywordStore_ReAddReplaces(t *testing.T) {
	store := NewKeywordStore(false)
	addDoc(t, store, "f1", "doc.txt", "old content here")
	addDoc(t, store, "f1", "doc.txt", "new content here")

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	chunks, err := store.ChunksByFileID(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "new content here", chunks[0])
}

func TestKeywordStore_DeleteByFileID(t *testing.T) {
	store := NewKeywordStore(false)
	addDoc(t, store, "f1", "a.txt", "alpha")
	addDoc(t, store, "f2", "b.txt", "beta")

	require.NoError(t, store.DeleteByFileID(context.Background(), "f1"))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	chunks, err := store.ChunksByFileID(context.Background(), "f1")
	require.NoError(t, err)
	assert.Nil(t, chunks)

	// 删除不存在的文件不报错
	require.NoError(t, store.DeleteByFileID(context.Background(), "missing"))
}

func TestKeywordStore_Clear(t *testing.T) {
	store := NewKeywordStore(false)
	addDoc(t, store, "f1", "a.txt", "alpha", "beta")
	addDoc(t, store, "f2", "b.txt", "gamma")

	require.NoError(t, store.Clear(context.Background()))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	results, err := store.Search(context.Background(), "alpha", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestKeywordStore_ChunkIndexes(t *testing.T) {
	store := NewKeywordStore(false)
	addDoc(t, store, "f1", "doc.txt", "zero chunk apple", "one chunk apple")

	results, err := store.Search(context.Background(), "apple", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].ChunkIndex)
	assert.Equal(t, 1, results[1].ChunkIndex)
	assert.Equal(t, "doc.txt", results[0].Filename)
}
