package store

import (
	"context"

	"github.com/Mouaaaaadddd/quizmaster/internal/model"
)

// SnapshotStore 会话快照的持久化后端。
// 持久层始终是"固定键 -> 全量会话映射 JSON"这一条记录，
// 每次 Save 整体覆盖，不存在增量写入。
type SnapshotStore interface {
	// Load 读取全量快照。后端无记录时返回空映射而非错误；
	// 记录损坏或结构不兼容时返回错误，由调用方决定降级策略。
	Load(ctx context.Context) (map[string]*model.DocumentSession, error)
	// Save 以全量覆盖方式写入快照
	Save(ctx context.Context, sessions map[string]*model.DocumentSession) error
	// Ping 健康检查
	Ping(ctx context.Context) error
}
