package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docqa-go/internal/model"
)

// mysqlDocumentRepository 把文档记录持久化到 MySQL，重启后文档列表
// 仍然可见。检索存储需要单独重建时由入库流程负责。
type mysqlDocumentRepository struct {
	db *gorm.DB
}

// NewMySQLDocumentRepository 创建 MySQL 文档注册表并自动建表。
func NewMySQLDocumentRepository(db *gorm.DB) (DocumentRepository, error) {
	if err := db.AutoMigrate(&model.DocumentRecord{}); err != nil {
		return nil, fmt.Errorf("迁移 documents 表失败: %w", err)
	}
	return &mysqlDocumentRepository{db: db}, nil
}

// Create 写入文档记录, file_id 冲突时更新已有行。
func (r *mysqlDocumentRepository) Create(ctx context.Context, doc *model.Document) error {
	record := model.RecordFromDocument(doc)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "file_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"filename", "file_size", "chunk_count", "status",
			"content_type", "storage_path", "upload_time",
		}),
	}).Create(record).Error
}

func (r *mysqlDocumentRepository) Get(ctx context.Context, fileID string) (*model.Document, error) {
	var record model.DocumentRecord
	err := r.db.WithContext(ctx).Where("file_id = ?", fileID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return record.ToDocument(), nil
}

func (r *mysqlDocumentRepository) List(ctx context.Context) ([]*model.Document, error) {
	var records []model.DocumentRecord
	err := r.db.WithContext(ctx).Order("upload_time asc, file_id asc").Find(&records).Error
	if err != nil {
		return nil, err
	}
	docs := make([]*model.Document, 0, len(records))
	for i := range records {
		docs = append(docs, records[i].ToDocument())
	}
	return docs, nil
}

func (r *mysqlDocumentRepository) Delete(ctx context.Context, fileID string) error {
	result := r.db.WithContext(ctx).Where("file_id = ?", fileID).Delete(&model.DocumentRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *mysqlDocumentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DocumentRecord{}).Count(&count).Error
	return count, err
}
