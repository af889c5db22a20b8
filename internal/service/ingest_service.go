// Package service 包含了文档问答应用的业务逻辑层。
package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"docqa-go/internal/chunker"
	"docqa-go/internal/config"
	"docqa-go/internal/extract"
	"docqa-go/internal/model"
	"docqa-go/internal/repository"
	"docqa-go/internal/retrieval"
	"docqa-go/pkg/log"
	"docqa-go/pkg/storage"
)

// ValidationError 表示上传请求本身不合法，处理器据此返回 400。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IngestService 定义文档入库流水线的操作接口。
type IngestService interface {
	// Ingest 处理一份文件: 校验、提取、分块、写入检索存储并登记。
	// 提取或索引失败不是错误, 文档会以 processing_failed 状态登记。
	Ingest(ctx context.Context, filename string, data []byte) (*model.Document, error)
	// IngestDirectory 遍历目录, 将支持的文件全部入库。内容重复的
	// 文件跳过重新处理。用于启动时的种子数据导入。
	IngestDirectory(ctx context.Context, dir string)
}

type ingestService struct {
	uploadCfg config.UploadConfig
	extractor extract.Extractor
	splitter  *chunker.Chunker
	store     retrieval.Store
	docRepo   repository.DocumentRepository
	blobs     storage.BlobStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIngestService 创建一个新的 IngestService 实例。
func NewIngestService(
	uploadCfg config.UploadConfig,
	extractor extract.Extractor,
	splitter *chunker.Chunker,
	store retrieval.Store,
	docRepo repository.DocumentRepository,
	blobs storage.BlobStore,
) IngestService {
	return &ingestService{
		uploadCfg: uploadCfg,
		extractor: extractor,
		splitter:  splitter,
		store:     store,
		docRepo:   docRepo,
		blobs:     blobs,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Ingest 是文件入库的主流程。
func (s *ingestService) Ingest(ctx context.Context, filename string, data []byte) (*model.Document, error) {
	if err := s.validate(filename, int64(len(data))); err != nil {
		return nil, err
	}

	sum := md5.Sum(data)
	fileID := hex.EncodeToString(sum[:])[:12]
	log.Infof("[Ingest] 开始处理文件, file_id: %s, filename: %s, size: %d", fileID, filename, len(data))

	// 同一 file_id 的并发入库串行执行, 避免重复索引
	unlock := s.lockFile(fileID)
	defer unlock()

	doc := &model.Document{
		FileID:      fileID,
		Filename:    filename,
		FileSize:    int64(len(data)),
		Status:      model.StatusProcessed,
		ContentType: contentTypeOf(filename),
		UploadTime:  time.Now(),
	}

	// 原始文件归档失败只告警, 不影响入库
	key := fmt.Sprintf("%s_%s", fileID, filename)
	path, err := s.blobs.Save(ctx, key, bytes.NewReader(data), int64(len(data)), doc.ContentType)
	if err != nil {
		log.Warnf("[Ingest] 归档原始文件失败, key: %s, error: %v", key, err)
	} else {
		doc.StoragePath = path
	}

	log.Info("[Ingest] 步骤1: 提取文本内容")
	text, err := s.extractor.Extract(ctx, bytes.NewReader(data), int64(len(data)), filename)
	if err != nil {
		log.Errorf("[Ingest] 提取文本失败, filename: %s, error: %v", filename, err)
		return s.registerFailed(ctx, doc)
	}

	log.Info("[Ingest] 步骤2: 文本分块")
	chunks := s.splitter.Split(text)
	if len(chunks) == 0 {
		log.Errorf("[Ingest] 未生成任何文本分块, filename: %s", filename)
		return s.registerFailed(ctx, doc)
	}
	log.Infof("[Ingest] 步骤2: 分块完成, 共 %d 个分块", len(chunks))

	log.Info("[Ingest] 步骤3: 写入检索存储")
	if err := s.store.Add(ctx, doc, chunks); err != nil {
		log.Errorf("[Ingest] 写入检索存储失败, file_id: %s, error: %v", fileID, err)
		return s.registerFailed(ctx, doc)
	}
	doc.ChunkCount = len(chunks)

	log.Info("[Ingest] 步骤4: 登记文档元数据")
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("登记文档元数据失败: %w", err)
	}

	log.Infof("[Ingest] 文件处理成功完成, file_id: %s, chunks: %d", fileID, len(chunks))
	return doc, nil
}

// registerFailed 将处理失败的文档以 processing_failed 状态登记。
func (s *ingestService) registerFailed(ctx context.Context, doc *model.Document) (*model.Document, error) {
	doc.Status = model.StatusProcessingFailed
	doc.ChunkCount = 0
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("登记失败文档失败: %w", err)
	}
	return doc, nil
}

// validate 检查文件名、扩展名与大小。
func (s *ingestService) validate(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return &ValidationError{Message: "No filename provided"}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	allowed := false
	for _, t := range s.uploadCfg.AllowedTypes {
		if strings.ToLower(strings.TrimSpace(t)) == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return &ValidationError{Message: fmt.Sprintf(
			"Unsupported file type '%s'. Supported: %s",
			ext, strings.Join(s.uploadCfg.AllowedTypes, ", "),
		)}
	}

	if size > s.uploadCfg.MaxFileSize {
		return &ValidationError{Message: fmt.Sprintf(
			"File too large. Maximum size: %.1fMB",
			float64(s.uploadCfg.MaxFileSize)/1024/1024,
		)}
	}
	return nil
}

// IngestDirectory 遍历 dir 下的所有文件并逐个入库。
func (s *ingestService) IngestDirectory(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warnf("[Ingest] 读取种子目录失败, dir: %s, error: %v", dir, err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			log.Warnf("[Ingest] 读取种子文件失败, path: %s, error: %v", path, err)
			continue
		}

		// 内容相同的文件跳过重新处理
		sum := md5.Sum(data)
		fileID := hex.EncodeToString(sum[:])[:12]
		if existing, err := s.docRepo.Get(ctx, fileID); err == nil && existing.Status == model.StatusProcessed {
			log.Infof("[Ingest] 种子文件已入库, 跳过: %s (file_id: %s)", name, fileID)
			continue
		}

		doc, err := s.Ingest(ctx, name, data)
		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				log.Infof("[Ingest] 跳过不支持的种子文件: %s (%s)", name, vErr.Message)
			} else {
				log.Errorf("[Ingest] 种子文件入库失败, path: %s, error: %v", path, err)
			}
			continue
		}
		log.Infof("[Ingest] 种子文件入库完成: %s, status: %s, chunks: %d", name, doc.Status, doc.ChunkCount)
	}
}

// lockFile 返回持有指定 file_id 互斥锁的解锁函数。
func (s *ingestService) lockFile(fileID string) func() {
	s.mu.Lock()
	m, ok := s.locks[fileID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[fileID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// contentTypeOf 根据扩展名推断 MIME 类型。
func contentTypeOf(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
