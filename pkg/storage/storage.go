// Package storage 提供了原始上传文件的归档能力，支持本地磁盘与 MinIO 两种后端。
package storage

import (
	"context"
	"io"
)

// BlobStore 是原始文件归档的抽象。key 由调用方构造（file_id_filename），
// 返回的 path 会记录在文档元数据中用于后续删除与排查。
type BlobStore interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (path string, err error)
	Delete(ctx context.Context, key string) error
}
