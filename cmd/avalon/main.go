package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/avalon/internal/config"
	"github.com/palemoky/avalon/internal/logger"
	"github.com/palemoky/avalon/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/game.yaml", "配置文件路径")
	resumeID := flag.String("resume", "", "从存储中恢复指定对局")
	flag.Parse()

	// .env 仅用于注入 OPENAI_API_KEY 等密钥，缺失不算错误
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		log.Printf("日志初始化失败: %v", err)
	}
	defer logger.Close()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("初始化快照存储失败: %v", err)
	}

	h, err := newHost(cfg, store, *resumeID)
	if err != nil {
		log.Fatalf("开局失败: %v", err)
	}

	fmt.Println("🏰 阿瓦隆对局开始")
	if err := h.run(); err != nil {
		logger.Error("game loop aborted: %v", err)
		log.Fatalf("对局中断: %v", err)
	}
}

// buildStore 根据配置选择快照后端，两项都未配置时不落盘
func buildStore(cfg *config.Config) (storage.SnapshotStore, error) {
	if addr := cfg.Snapshot.RedisAddr; addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Snapshot.RedisPassword,
			DB:       cfg.Snapshot.RedisDB,
		})
		return storage.NewRedisStore(client), nil
	}
	if dir := cfg.Snapshot.Dir; dir != "" {
		return storage.NewFileStore(dir)
	}
	return nil, nil
}
