package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa-go/internal/config"
	"docqa-go/internal/model"
	"docqa-go/internal/repository"
	"docqa-go/internal/retrieval"
	"docqa-go/pkg/llm"
)

// stubProvider 是测试用的生成模型替身。
type stubProvider struct {
	answer string
	err    error
	deltas []string

	lastPrompt string
}

func (p *stubProvider) Generate(_ context.Context, prompt string) (string, error) {
	p.lastPrompt = prompt
	if p.err != nil {
		return "", p.err
	}
	return p.answer, nil
}

func (p *stubProvider) Stream(_ context.Context, prompt string, onDelta func(string) error) error {
	p.lastPrompt = prompt
	if p.err != nil {
		return p.err
	}
	if len(p.deltas) == 0 {
		return onDelta(p.answer)
	}
	for _, d := range p.deltas {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return nil
}

func (p *stubProvider) Name() string { return "stub" }

type chatFixture struct {
	svc      ChatService
	store    retrieval.Store
	docs     repository.DocumentRepository
	sessions repository.SessionRepository
}

func newChatFixture(provider llm.Provider) *chatFixture {
	store := retrieval.NewKeywordStore(false)
	docs := repository.NewMemoryDocumentRepository()
	sessions := repository.NewMemorySessionRepository()
	svc := NewChatService(config.RetrievalConfig{TopK: 4, SimilarityThreshold: 0.7}, store, provider, docs, sessions)
	return &chatFixture{svc: svc, store: store, docs: docs, sessions: sessions}
}

func (f *chatFixture) seed(t *testing.T, fileID, filename string, chunks ...string) {
	t.Helper()
	ctx := context.Background()
	doc := &model.Document{
		FileID:     fileID,
		Filename:   filename,
		FileSize:   int64(len(strings.Join(chunks, ""))),
		ChunkCount: len(chunks),
		Status:     model.StatusProcessed,
		UploadTime: time.Now(),
	}
	require.NoError(t, f.store.Add(ctx, doc, chunks))
	require.NoError(t, f.docs.Create(ctx, doc))
}

func TestChat_NoDocumentsYet(t *testing.T) {
	f := newChatFixture(nil)

	resp, err := f.svc.Chat(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, answerNoDocuments, resp.Response)
	assert.NotEmpty(t, resp.SessionID)
	assert.Empty(t, resp.Sources)
}

func TestChat_NoRelevantChunks(t *testing.T) {
	f := newChatFixture(nil)
	f.seed(t, "a1", "fruit.txt", "orange juice and apple cider recipes")

	resp, err := f.svc.Chat(context.Background(), "quantum entanglement", "")
	require.NoError(t, err)
	assert.Equal(t, answerNoMatches, resp.Response)
	assert.Empty(t, resp.Sources)
}

func TestChat_KeepsProvidedSessionID(t *testing.T) {
	f := newChatFixture(nil)

	resp, err := f.svc.Chat(context.Background(), "hello", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", resp.SessionID)
}

func TestChat_ProviderAnswer(t *testing.T) {
	provider := &stubProvider{answer: "  Neural networks learn from data.  "}
	f := newChatFixture(provider)
	f.seed(t, "a1", "ml.txt", "machine learning with neural networks")

	resp, err := f.svc.Chat(context.Background(), "machine learning", "")
	require.NoError(t, err)
	assert.Equal(t, "Neural networks learn from data.", resp.Response)

	// 提示词应携带检索到的上下文与原始问题
	assert.Contains(t, provider.lastPrompt, "Document Context:")
	assert.Contains(t, provider.lastPrompt, "From ml.txt:")
	assert.Contains(t, provider.lastPrompt, "machine learning with neural networks")
	assert.Contains(t, provider.lastPrompt, "User Question: machine learning")
}

func TestChat_ProviderFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("rate limited")}
	f := newChatFixture(provider)
	f.seed(t, "a1", "ml.txt", "machine learning with neural networks")

	resp, err := f.svc.Chat(context.Background(), "machine learning", "")
	require.NoError(t, err)
	assert.Equal(t, "Error generating response: rate limited", resp.Response)
	// 检索成功, 即便生成失败也应返回引用来源
	assert.Len(t, resp.Sources, 1)
}

func TestChat_EmptyModelReply(t *testing.T) {
	provider := &stubProvider{err: llm.ErrEmptyResponse}
	f := newChatFixture(provider)
	f.seed(t, "a1", "ml.txt", "machine learning with neural networks")

	resp, err := f.svc.Chat(context.Background(), "machine learning", "")
	require.NoError(t, err)
	assert.Equal(t, answerEmptyReply, resp.Response)
}

func TestChat_TemplateMode(t *testing.T) {
	f := newChatFixture(nil)
	f.seed(t, "a1", "ml.txt", "Machine learning systems improve automatically through experience gathered over time.")

	resp, err := f.svc.Chat(context.Background(), "machine learning", "")
	require.NoError(t, err)
	assert.Contains(t, resp.Response, "## 💡 Analysis Results")
	assert.Contains(t, resp.Response, `*"machine learning"*`)
	assert.Contains(t, resp.Response, "Demo Mode")
	assert.Contains(t, resp.Response, "`ml.txt`")
}

func TestChat_SummaryQueryPicksSummaryShell(t *testing.T) {
	f := newChatFixture(nil)
	f.seed(t, "a1", "notes.txt", "The summary of machine learning is that systems improve automatically through experience.")

	resp, err := f.svc.Chat(context.Background(), "What is the summary?", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Response, "## 📋 Document Summary"))
	assert.Contains(t, resp.Response, "`notes.txt`")

	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "notes.txt", resp.Sources[0].Filename)
	assert.InDelta(t, 0.5, resp.Sources[0].RelevanceScore, 1e-9)
}

func TestChat_RecordsHistory(t *testing.T) {
	f := newChatFixture(nil)
	ctx := context.Background()

	first, err := f.svc.Chat(ctx, "hello there", "")
	require.NoError(t, err)
	_, err = f.svc.Chat(ctx, "anyone home", first.SessionID)
	require.NoError(t, err)

	history, err := f.svc.History(ctx, first.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hello there", history[0].UserMessage)
	assert.Equal(t, answerNoDocuments, history[0].AssistantResponse)
	assert.Equal(t, "anyone home", history[1].UserMessage)
	assert.False(t, history[0].Timestamp.IsZero())
}

func TestChat_SourcesDedupedByFile(t *testing.T) {
	f := newChatFixture(&stubProvider{answer: "ok"})
	longChunk := "alpha beta " + strings.Repeat("x", 240)
	f.seed(t, "a1", "alpha.txt", longChunk, "alpha appears alone here")
	f.seed(t, "b1", "beta.txt", "beta appears alone here")

	resp, err := f.svc.Chat(context.Background(), "alpha beta gamma", "")
	require.NoError(t, err)

	// alpha.txt 有两个命中分块, 只保留排名最高的那个作为来源
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "alpha.txt", resp.Sources[0].Filename)
	assert.InDelta(t, 0.667, resp.Sources[0].RelevanceScore, 1e-9)
	assert.True(t, strings.HasSuffix(resp.Sources[0].ChunkPreview, "..."))
	assert.Len(t, []rune(resp.Sources[0].ChunkPreview), 203)

	assert.Equal(t, "beta.txt", resp.Sources[1].Filename)
	assert.InDelta(t, 0.333, resp.Sources[1].RelevanceScore, 1e-9)
	assert.Equal(t, "beta appears alone here", resp.Sources[1].ChunkPreview)
}

func TestChatStream_ForwardsDeltas(t *testing.T) {
	provider := &stubProvider{deltas: []string{"Hel", "lo ", "world"}}
	f := newChatFixture(provider)
	f.seed(t, "a1", "ml.txt", "machine learning with neural networks")

	var got []string
	resp, err := f.svc.ChatStream(context.Background(), "machine learning", "", func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo ", "world"}, got)
	assert.Equal(t, "Hello world", resp.Response)
}

func TestChatStream_CannedAnswerIsSingleDelta(t *testing.T) {
	f := newChatFixture(nil)

	var got []string
	resp, err := f.svc.ChatStream(context.Background(), "hello", "", func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{answerNoDocuments}, got)
	assert.Equal(t, answerNoDocuments, resp.Response)
}

func TestChatStream_StreamFailureFallsBack(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection reset")}
	f := newChatFixture(provider)
	f.seed(t, "a1", "ml.txt", "machine learning with neural networks")

	var got []string
	resp, err := f.svc.ChatStream(context.Background(), "machine learning", "", func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Error generating response: connection reset", resp.Response)
}

func TestHistory_UnknownSession(t *testing.T) {
	f := newChatFixture(nil)

	_, err := f.svc.History(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestClearHistory(t *testing.T) {
	f := newChatFixture(nil)
	ctx := context.Background()

	resp, err := f.svc.Chat(ctx, "hello", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.ClearHistory(ctx, resp.SessionID))

	history, err := f.svc.History(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Empty(t, history)
}
