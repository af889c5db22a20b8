package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docqa-go/internal/model"
	"docqa-go/internal/repository"
	"docqa-go/internal/retrieval"
	"docqa-go/pkg/llm"
	"docqa-go/pkg/log"
	"docqa-go/pkg/storage"
)

const summaryPromptTemplate = `Please provide a comprehensive summary of the following document:

%s

Focus on:
1. Main topics and themes
2. Key points and findings
3. Important details and conclusions
4. Overall structure and organization

Provide a clear, well-structured summary.`

// 摘要提示词里最多携带的文档字符数
const summaryTextLimit = 4000

// DocumentService 接口定义了文档管理相关的业务操作。
type DocumentService interface {
	List(ctx context.Context) ([]model.DocumentListItem, error)
	// Delete 删除文档及其分块和归档文件, 返回被删除文档的文件名。
	Delete(ctx context.Context, fileID string) (string, error)
	ClearAll(ctx context.Context) error
	Summary(ctx context.Context, fileID string) (*model.DocumentSummary, error)
	Stats(ctx context.Context) (*model.StatsResponse, error)
}

type documentService struct {
	store       retrieval.Store
	provider    llm.Provider // 为 nil 时摘要走模板模式
	docRepo     repository.DocumentRepository
	sessionRepo repository.SessionRepository
	blobs       storage.BlobStore
}

// NewDocumentService 创建一个新的 DocumentService 实例。
func NewDocumentService(
	store retrieval.Store,
	provider llm.Provider,
	docRepo repository.DocumentRepository,
	sessionRepo repository.SessionRepository,
	blobs storage.BlobStore,
) DocumentService {
	return &documentService{
		store:       store,
		provider:    provider,
		docRepo:     docRepo,
		sessionRepo: sessionRepo,
		blobs:       blobs,
	}
}

// List 按上传时间顺序返回所有文档。
func (s *documentService) List(ctx context.Context) ([]model.DocumentListItem, error) {
	docs, err := s.docRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]model.DocumentListItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.ListItem())
	}
	return items, nil
}

// Delete 删除一个文档。注册表删除生效后, 分块和归档清理失败只记录日志。
func (s *documentService) Delete(ctx context.Context, fileID string) (string, error) {
	doc, err := s.docRepo.Get(ctx, fileID)
	if err != nil {
		return "", err
	}
	if err := s.docRepo.Delete(ctx, fileID); err != nil {
		return "", err
	}

	if err := s.store.DeleteByFileID(ctx, fileID); err != nil {
		log.Errorf("[Document] 清理检索分块失败, file_id: %s, error: %v", fileID, err)
	}
	s.deleteBlob(ctx, doc)

	log.Infof("[Document] 文档已删除, file_id: %s, filename: %s", doc.FileID, doc.Filename)
	return doc.Filename, nil
}

// ClearAll 清空所有文档、分块与归档文件。
func (s *documentService) ClearAll(ctx context.Context) error {
	docs, err := s.docRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.docRepo.Delete(ctx, doc.FileID); err != nil && !errors.Is(err, repository.ErrDocumentNotFound) {
			return err
		}
		s.deleteBlob(ctx, doc)
	}
	if err := s.store.Clear(ctx); err != nil {
		log.Errorf("[Document] 清空检索存储失败: %v", err)
	}
	log.Infof("[Document] 已清空 %d 个文档", len(docs))
	return nil
}

// Summary 生成指定文档的摘要。
func (s *documentService) Summary(ctx context.Context, fileID string) (*model.DocumentSummary, error) {
	doc, err := s.docRepo.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}

	chunks, err := s.store.ChunksByFileID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks for %s: %w", fileID, err)
	}

	return &model.DocumentSummary{
		FileID:   doc.FileID,
		Filename: doc.Filename,
		Summary:  s.summarize(ctx, doc, chunks),
	}, nil
}

func (s *documentService) summarize(ctx context.Context, doc *model.Document, chunks []string) string {
	if s.provider == nil {
		return summaryAnswer(snippetsOf(chunks), []string{doc.Filename})
	}

	fullText := strings.Join(chunks, " ")
	if runes := []rune(fullText); len(runes) > summaryTextLimit {
		fullText = string(runes[:summaryTextLimit])
	}

	answer, err := s.provider.Generate(ctx, fmt.Sprintf(summaryPromptTemplate, fullText))
	if err != nil {
		// 摘要失败不是 HTTP 错误, 错误信息作为摘要文本返回
		log.Errorf("[Document] 生成摘要失败, file_id: %s, error: %v", doc.FileID, err)
		return "Error generating summary: " + err.Error()
	}
	return strings.TrimSpace(answer)
}

// Stats 汇总文档、分块与会话数量和后端配置。
func (s *documentService) Stats(ctx context.Context) (*model.StatsResponse, error) {
	docCount, err := s.docRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	chunkCount, err := s.store.Count(ctx)
	if err != nil {
		log.Warnf("[Document] 统计分块数量失败: %v", err)
		chunkCount = 0
	}
	sessionCount, err := s.sessionRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	providerName := "template"
	aiEnabled := false
	if s.provider != nil {
		providerName = s.provider.Name()
		aiEnabled = true
	}

	return &model.StatsResponse{
		Documents:        int(docCount),
		Chunks:           int(chunkCount),
		Sessions:         int(sessionCount),
		RetrievalBackend: s.store.Name(),
		Provider:         providerName,
		AIEnabled:        aiEnabled,
	}, nil
}

func (s *documentService) deleteBlob(ctx context.Context, doc *model.Document) {
	if doc.StoragePath == "" {
		return
	}
	key := fmt.Sprintf("%s_%s", doc.FileID, doc.Filename)
	if err := s.blobs.Delete(ctx, key); err != nil {
		log.Warnf("[Document] 删除归档文件失败, key: %s, error: %v", key, err)
	}
}
