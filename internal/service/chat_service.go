package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"docqa-go/internal/config"
	"docqa-go/internal/model"
	"docqa-go/internal/repository"
	"docqa-go/internal/retrieval"
	"docqa-go/pkg/llm"
	"docqa-go/pkg/log"
)

// 固定回答文案。生成失败和检索为空都不是 HTTP 错误, 统一用文案兜底。
const (
	answerNoDocuments = "Please upload a document first to start chatting with your content!"
	answerNoMatches   = "I couldn't find relevant information in your uploaded documents to answer this question. Please try rephrasing your question or upload more relevant documents."
	answerEmptyReply  = "Sorry, I couldn't generate a response. Please try rephrasing your question."
)

const promptTemplate = `Based on the following document excerpts, please answer the user's question. Be accurate and provide helpful information based only on the context provided.

Document Context:
%s

User Question: %s

Please provide a clear, accurate answer based on the information in the documents above. If you cannot find the specific information requested, please say so clearly.`

// ChatService 定义问答会话的业务操作接口。
type ChatService interface {
	Chat(ctx context.Context, message, sessionID string) (*model.ChatResponse, error)
	// ChatStream 与 Chat 流程一致, 但通过 onDelta 增量下发生成内容。
	ChatStream(ctx context.Context, message, sessionID string, onDelta func(chunk string) error) (*model.ChatResponse, error)
	History(ctx context.Context, sessionID string) ([]model.HistoryEntry, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

type chatService struct {
	retrievalCfg config.RetrievalConfig
	store        retrieval.Store
	provider     llm.Provider // 为 nil 时走模板回答模式
	docRepo      repository.DocumentRepository
	sessionRepo  repository.SessionRepository
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(
	retrievalCfg config.RetrievalConfig,
	store retrieval.Store,
	provider llm.Provider,
	docRepo repository.DocumentRepository,
	sessionRepo repository.SessionRepository,
) ChatService {
	return &chatService{
		retrievalCfg: retrievalCfg,
		store:        store,
		provider:     provider,
		docRepo:      docRepo,
		sessionRepo:  sessionRepo,
	}
}

func (s *chatService) Chat(ctx context.Context, message, sessionID string) (*model.ChatResponse, error) {
	return s.respond(ctx, message, sessionID, nil)
}

func (s *chatService) ChatStream(ctx context.Context, message, sessionID string, onDelta func(string) error) (*model.ChatResponse, error) {
	return s.respond(ctx, message, sessionID, onDelta)
}

// respond 协调一次完整的问答: 检索、生成、记录历史。
func (s *chatService) respond(ctx context.Context, message, sessionID string, onDelta func(string) error) (*model.ChatResponse, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if err := s.sessionRepo.Touch(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}
	log.Infof("[Chat] 开始处理问题, session: %s", sessionID)

	answer, sources, streamed, err := s.buildAnswer(ctx, message, onDelta)
	if err != nil {
		return nil, err
	}
	// 固定文案与模板回答没有走流式通道, 这里一次性下发
	if onDelta != nil && !streamed {
		if err := onDelta(answer); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	entry := model.HistoryEntry{
		UserMessage:       message,
		AssistantResponse: answer,
		Timestamp:         now,
		Sources:           sources,
	}
	if err := s.sessionRepo.Append(ctx, sessionID, entry); err != nil {
		log.Errorf("[Chat] 保存会话历史失败, session: %s, error: %v", sessionID, err)
	}

	return &model.ChatResponse{
		Response:  answer,
		SessionID: sessionID,
		Timestamp: now,
		Sources:   sources,
	}, nil
}

// buildAnswer 执行检索与生成, 返回回答、引用来源与增量是否已下发。
func (s *chatService) buildAnswer(ctx context.Context, message string, onDelta func(string) error) (string, []model.SourceRef, bool, error) {
	noSources := []model.SourceRef{}

	docCount, err := s.docRepo.Count(ctx)
	if err != nil {
		return "", nil, false, fmt.Errorf("failed to count documents: %w", err)
	}
	if docCount == 0 {
		return answerNoDocuments, noSources, false, nil
	}

	results, err := s.store.Search(ctx, message, s.retrievalCfg.TopK)
	if err != nil {
		// 检索故障按无结果处理, 回答兜底文案
		log.Errorf("[Chat] 检索失败: %v", err)
		results = nil
	}
	if len(results) == 0 {
		return answerNoMatches, noSources, false, nil
	}
	log.Infof("[Chat] 检索到 %d 个相关分块", len(results))

	sources := buildSources(results)

	if s.provider == nil {
		return templateAnswer(message, results), sources, false, nil
	}

	prompt := buildPrompt(message, results)

	if onDelta != nil {
		answer, err := s.streamAnswer(ctx, prompt, onDelta)
		if err == nil {
			return answer, sources, true, nil
		}
		log.Errorf("[Chat] 流式生成失败: %v", err)
		return answerForProviderError(err), sources, false, nil
	}

	answer, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		log.Errorf("[Chat] 生成回答失败: %v", err)
		return answerForProviderError(err), sources, false, nil
	}
	return strings.TrimSpace(answer), sources, false, nil
}

// streamAnswer 通过流式接口生成回答, 同时把增量转发给调用方。
func (s *chatService) streamAnswer(ctx context.Context, prompt string, onDelta func(string) error) (string, error) {
	var sb strings.Builder
	err := s.provider.Stream(ctx, prompt, func(delta string) error {
		sb.WriteString(delta)
		return onDelta(delta)
	})
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", llm.ErrEmptyResponse
	}
	return answer, nil
}

func (s *chatService) History(ctx context.Context, sessionID string) ([]model.HistoryEntry, error) {
	return s.sessionRepo.History(ctx, sessionID)
}

func (s *chatService) ClearHistory(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Clear(ctx, sessionID)
}

// answerForProviderError 把生成失败映射为用户可读的回答文案。
func answerForProviderError(err error) string {
	if errors.Is(err, llm.ErrEmptyResponse) {
		return answerEmptyReply
	}
	return "Error generating response: " + err.Error()
}

// buildPrompt 用检索结果拼装上下文并套用问答提示词模板。
func buildPrompt(message string, results []model.ScoredChunk) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("From %s:\n%s", r.Filename, r.Text))
	}
	return fmt.Sprintf(promptTemplate, strings.Join(blocks, "\n\n"), message)
}

// buildSources 按文件名去重组装引用来源, 排名最高的分块代表该文件。
func buildSources(results []model.ScoredChunk) []model.SourceRef {
	sources := make([]model.SourceRef, 0, len(results))
	seen := make(map[string]struct{})
	for _, r := range results {
		if _, ok := seen[r.Filename]; ok {
			continue
		}
		seen[r.Filename] = struct{}{}
		sources = append(sources, model.SourceRef{
			Filename:       r.Filename,
			ChunkPreview:   preview(r.Text, 200),
			RelevanceScore: math.Round(r.Score*1000) / 1000,
		})
	}
	return sources
}

// preview 截取前 n 个字符, 截断时追加省略号。
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
