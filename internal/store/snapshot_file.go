package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mouaaaaadddd/quizmaster/internal/model"
)

// FileSnapshotStore 本地 JSON 文件快照，默认后端。
// 写入走临时文件 + rename，避免进程中途退出留下半截文件。
type FileSnapshotStore struct {
	Path string
}

func NewFileSnapshotStore(path string) *FileSnapshotStore {
	return &FileSnapshotStore{Path: path}
}

func (f *FileSnapshotStore) Load(ctx context.Context) (map[string]*model.DocumentSession, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return map[string]*model.DocumentSession{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", f.Path, err)
	}

	sessions := map[string]*model.DocumentSession{}
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", f.Path, err)
	}
	return sessions, nil
}

func (f *FileSnapshotStore) Save(ctx context.Context, sessions map[string]*model.DocumentSession) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

func (f *FileSnapshotStore) Ping(ctx context.Context) error {
	dir := filepath.Dir(f.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
