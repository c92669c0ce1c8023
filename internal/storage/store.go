// Package storage 提供宿主侧的快照持久化
// 引擎本身不感知后端，只消费/产出快照文档
package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/palemoky/avalon/internal/game/snapshot"
)

// SnapshotStore 快照存取接口
type SnapshotStore interface {
	Save(ctx context.Context, gameID string, snap *snapshot.Game) error
	Load(ctx context.Context, gameID string) (*snapshot.Game, error)
	Delete(ctx context.Context, gameID string) error
}

// FileStore 以单文件 JSON 为后端的快照存储
type FileStore struct {
	dir string
}

// NewFileStore 创建文件快照存储，目录不存在时自动创建
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(gameID string) string {
	return filepath.Join(s.dir, gameID+".json")
}

// Save 写入快照文件
func (s *FileStore) Save(_ context.Context, gameID string, snap *snapshot.Game) error {
	return snapshot.Save(snap, s.path(gameID))
}

// Load 读取快照文件
func (s *FileStore) Load(_ context.Context, gameID string) (*snapshot.Game, error) {
	return snapshot.Load(s.path(gameID))
}

// Delete 删除快照文件
func (s *FileStore) Delete(_ context.Context, gameID string) error {
	err := os.Remove(s.path(gameID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
