// Package repository 提供文档注册表与会话存储的数据访问实现。
package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"docqa-go/internal/model"
)

// ErrDocumentNotFound 表示注册表中不存在指定 file_id 的文档。
var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepository 定义文档元数据注册表的操作接口。
type DocumentRepository interface {
	// Create 写入文档记录。file_id 已存在时覆盖旧记录。
	Create(ctx context.Context, doc *model.Document) error
	Get(ctx context.Context, fileID string) (*model.Document, error)
	// List 返回全部文档, 按上传时间升序, 同一时刻按 file_id 排序。
	List(ctx context.Context) ([]*model.Document, error)
	Delete(ctx context.Context, fileID string) error
	Count(ctx context.Context) (int64, error)
}

// memoryDocumentRepository 把文档记录保存在进程内存中，是默认实现。
type memoryDocumentRepository struct {
	mu   sync.RWMutex
	docs map[string]model.Document
}

// NewMemoryDocumentRepository 创建内存文档注册表。
func NewMemoryDocumentRepository() DocumentRepository {
	return &memoryDocumentRepository{docs: make(map[string]model.Document)}
}

func (r *memoryDocumentRepository) Create(_ context.Context, doc *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.FileID] = *doc
	return nil
}

func (r *memoryDocumentRepository) Get(_ context.Context, fileID string) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[fileID]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return &doc, nil
}

func (r *memoryDocumentRepository) List(_ context.Context) ([]*model.Document, error) {
	r.mu.RLock()
	docs := make([]*model.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		d := doc
		docs = append(docs, &d)
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UploadTime.Equal(docs[j].UploadTime) {
			return docs[i].FileID < docs[j].FileID
		}
		return docs[i].UploadTime.Before(docs[j].UploadTime)
	})
	return docs, nil
}

func (r *memoryDocumentRepository) Delete(_ context.Context, fileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[fileID]; !ok {
		return ErrDocumentNotFound
	}
	delete(r.docs, fileID)
	return nil
}

func (r *memoryDocumentRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.docs)), nil
}
