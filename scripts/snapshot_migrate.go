// 手动迁移会话快照脚本
//
// 在持久化后端之间搬运全量会话快照，用于切换 persistence.driver
// 前的数据迁移（例如从默认的本地文件迁到 Redis）。
//
// 用法: go run scripts/snapshot_migrate.go -from file -to redis

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/Mouaaaaadddd/quizmaster/internal/config"
	"github.com/Mouaaaaadddd/quizmaster/internal/store"
	"github.com/Mouaaaaadddd/quizmaster/pkg/database"
)

func newBackend(cfg *config.Config, driver string) (store.SnapshotStore, error) {
	switch driver {
	case "file":
		return store.NewFileSnapshotStore(cfg.Persistence.FilePath), nil
	case "redis":
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store.NewRedisSnapshotStore(rdb, cfg.Persistence.SnapshotKey), nil
	case "mysql":
		db, err := database.InitDB(&cfg.Database)
		if err != nil {
			return nil, err
		}
		return store.NewGormSnapshotStore(db, cfg.Persistence.SnapshotKey), nil
	default:
		return nil, fmt.Errorf("unknown driver %q (file|redis|mysql)", driver)
	}
}

func main() {
	from := flag.String("from", "file", "源后端: file|redis|mysql")
	to := flag.String("to", "", "目标后端: file|redis|mysql")
	flag.Parse()

	if *to == "" || *to == *from {
		log.Fatalf("需要一个不同于源的目标后端，-from=%s -to=%s", *from, *to)
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}

	ctx := context.Background()

	src, err := newBackend(cfg, *from)
	if err != nil {
		log.Fatalf("源后端初始化失败: %v", err)
	}
	dst, err := newBackend(cfg, *to)
	if err != nil {
		log.Fatalf("目标后端初始化失败: %v", err)
	}

	sessions, err := src.Load(ctx)
	if err != nil {
		log.Fatalf("读取源快照失败: %v", err)
	}
	if err := dst.Save(ctx, sessions); err != nil {
		log.Fatalf("写入目标快照失败: %v", err)
	}

	log.Printf("迁移完成: %d 个会话从 %s 到 %s，记得把 persistence.driver 改为 %s", len(sessions), *from, *to, *to)
}
