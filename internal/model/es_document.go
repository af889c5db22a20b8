// Package model 定义了与外部存储对应的 Go 结构体。
package model

import "time"

// ChunkDocument 定义了存储在 Elasticsearch 中的文本块结构。
// 文档 ID 使用 "{file_id}_{chunk_index}"，重复写入同一块会覆盖旧值。
type ChunkDocument struct {
	ChunkID    string    `json:"chunk_id"`
	FileID     string    `json:"file_id"`
	Filename   string    `json:"filename"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Vector     []float32 `json:"vector"`
	UploadedAt time.Time `json:"uploaded_at"`
}
