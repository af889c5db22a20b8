package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// LocalStore 将原始文件保存在本地目录下，是默认的归档后端。
type LocalStore struct {
	dir string
}

// NewLocalStore 创建本地磁盘归档，目录不存在时自动创建。
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

// Save 把内容写入 {dir}/{key}，返回落盘路径。
func (s *LocalStore) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	path := filepath.Join(s.dir, key)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return path, nil
}

// Delete 删除对应文件，文件不存在不算错误。
func (s *LocalStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
