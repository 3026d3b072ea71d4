// @title Survey Insight 后端 API
// @version 1.0
// @description 问卷平台的响应分析与导出后端服务。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"
	"survey_insight_backend/internal/app"
	"survey_insight_backend/internal/config"
	"survey_insight_backend/pkg/configwatcher"
	"survey_insight_backend/pkg/logger"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	// 配置热更新：中间件通过共享指针按请求读取 JWT 密钥等字段，整体替换即生效
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		newCfg.ForceMigrate = cfg.ForceMigrate
		newCfg.MigrateOnly = cfg.MigrateOnly
		*cfg = *newCfg
		log.Println("配置文件已重新加载")
	})

	application.Run()
}
