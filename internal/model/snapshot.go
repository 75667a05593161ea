package model

import "time"

// SessionSnapshot MySQL 快照后端的存储行：固定键 + 全量 JSON
type SessionSnapshot struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Data      string    `gorm:"type:longtext" json:"data"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SessionSnapshot) TableName() string {
	return "session_snapshots"
}
