// @title QuizMaster API
// @version 1.0
// @description 把文本文档变成AI生成测验的后端服务。

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
package main

import (
	"log"

	"github.com/Mouaaaaadddd/quizmaster/internal/app"
	"github.com/Mouaaaaadddd/quizmaster/internal/config"
	"github.com/Mouaaaaadddd/quizmaster/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
