// Package model 定义了文档问答服务的数据模型与 API 数据传输对象。
package model

import "time"

// 文档处理状态。上传总是会登记文档，但提取或索引失败时状态为 processing_failed。
const (
	StatusProcessed        = "processed"
	StatusProcessingFailed = "processing_failed"
)

// Document 代表一个已上传文档的元数据。FileID 是对原始文件内容做 MD5
// 后取前 12 位十六进制字符，因此内容相同的文件会复用同一条记录。
type Document struct {
	FileID      string    `json:"file_id"`
	Filename    string    `json:"filename"`
	FileSize    int64     `json:"file_size"`
	ChunkCount  int       `json:"chunk_count"`
	Status      string    `json:"status"`
	ContentType string    `json:"-"`
	StoragePath string    `json:"-"`
	UploadTime  time.Time `json:"upload_time"`
}

// UploadResponse 是 POST /api/upload 的响应体。
type UploadResponse struct {
	FileID        string    `json:"file_id"`
	Filename      string    `json:"filename"`
	FileSize      int64     `json:"file_size"`
	ChunksCreated int       `json:"chunks_created"`
	Status        string    `json:"status"`
	UploadTime    time.Time `json:"upload_time"`
}

// DocumentListItem 是 GET /api/documents 列表中的单项。
type DocumentListItem struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileSize   int64     `json:"file_size"`
	ChunkCount int       `json:"chunk_count"`
	UploadTime time.Time `json:"upload_time"`
	Status     string    `json:"status"`
}

// DocumentSummary 是 GET /api/documents/:file_id/summary 的响应体。
type DocumentSummary struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Summary  string `json:"summary"`
}

// ListItem 将文档元数据转换为列表项。
func (d *Document) ListItem() DocumentListItem {
	return DocumentListItem{
		ID:         d.FileID,
		Filename:   d.Filename,
		FileSize:   d.FileSize,
		ChunkCount: d.ChunkCount,
		UploadTime: d.UploadTime,
		Status:     d.Status,
	}
}

// UploadResponse 将文档元数据转换为上传响应。
func (d *Document) UploadResponse() UploadResponse {
	return UploadResponse{
		FileID:        d.FileID,
		Filename:      d.Filename,
		FileSize:      d.FileSize,
		ChunksCreated: d.ChunkCount,
		Status:        d.Status,
		UploadTime:    d.UploadTime,
	}
}

// DocumentRecord 定义了 documents 表的 ORM 模型，仅在启用 MySQL
// 注册表后端时使用。
type DocumentRecord struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	FileID      string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	Filename    string    `gorm:"type:varchar(255);not null"`
	FileSize    int64     `gorm:"not null"`
	ChunkCount  int       `gorm:"not null;default:0"`
	Status      string    `gorm:"type:varchar(32);not null"`
	ContentType string    `gorm:"type:varchar(128)"`
	StoragePath string    `gorm:"type:varchar(512)"`
	UploadTime  time.Time `gorm:"not null"`
	CreatedAt   LocalTime `gorm:"autoCreateTime"`
	UpdatedAt   LocalTime `gorm:"autoUpdateTime"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (DocumentRecord) TableName() string {
	return "documents"
}

// ToDocument 将数据库记录转换为领域模型。
func (r *DocumentRecord) ToDocument() *Document {
	return &Document{
		FileID:      r.FileID,
		Filename:    r.Filename,
		FileSize:    r.FileSize,
		ChunkCount:  r.ChunkCount,
		Status:      r.Status,
		ContentType: r.ContentType,
		StoragePath: r.StoragePath,
		UploadTime:  r.UploadTime,
	}
}

// RecordFromDocument 将领域模型转换为数据库记录。
func RecordFromDocument(d *Document) *DocumentRecord {
	return &DocumentRecord{
		FileID:      d.FileID,
		Filename:    d.Filename,
		FileSize:    d.FileSize,
		ChunkCount:  d.ChunkCount,
		Status:      d.Status,
		ContentType: d.ContentType,
		StoragePath: d.StoragePath,
		UploadTime:  d.UploadTime,
	}
}
