package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Mouaaaaadddd/quizmaster/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSnapshotStore MySQL 快照后端：session_snapshots 表中固定键的一行
type GormSnapshotStore struct {
	db  *gorm.DB
	key string
}

func NewGormSnapshotStore(db *gorm.DB, key string) *GormSnapshotStore {
	return &GormSnapshotStore{db: db, key: key}
}

func (g *GormSnapshotStore) Load(ctx context.Context) (map[string]*model.DocumentSession, error) {
	var row model.SessionSnapshot
	err := g.db.WithContext(ctx).First(&row, "`key` = ?", g.key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return map[string]*model.DocumentSession{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot row %s: %w", g.key, err)
	}

	sessions := map[string]*model.DocumentSession{}
	if err := json.Unmarshal([]byte(row.Data), &sessions); err != nil {
		return nil, fmt.Errorf("parse snapshot row %s: %w", g.key, err)
	}
	return sessions, nil
}

func (g *GormSnapshotStore) Save(ctx context.Context, sessions map[string]*model.DocumentSession) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return err
	}

	row := model.SessionSnapshot{Key: g.key, Data: string(data)}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (g *GormSnapshotStore) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
