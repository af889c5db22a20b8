// Package retrieval 提供问答流水线的分块检索存储，支持内存关键词
// 打分与 Elasticsearch 向量两种后端。
package retrieval

import (
	"context"

	"docqa-go/internal/model"
)

// Store 是检索后端的统一接口，两种实现对调用方行为一致。
type Store interface {
	// Add 写入一个文件的全部分块。重复写入同一 file_id 时旧分块先被清除。
	Add(ctx context.Context, doc *model.Document, chunks []string) error
	// Search 返回与查询最相关的至多 topK 个分块，按相关度降序。
	Search(ctx context.Context, query string, topK int) ([]model.ScoredChunk, error)
	// ChunksByFileID 按 chunk_index 升序返回某个文件的全部分块文本。
	ChunksByFileID(ctx context.Context, fileID string) ([]string, error)
	DeleteByFileID(ctx context.Context, fileID string) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	// Name 返回后端标识, 用于统计接口展示。
	Name() string
}
