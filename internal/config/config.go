package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config アプリ全体の設定
type Config struct {
	DatasetPath  string        // 聖地データのJSONファイル
	LedgerPath   string        // 打卡記録のJSONファイル
	OutputDir    string        // 生成カードの保存先
	FontPath     string        // CJKフォントファイル（空なら内蔵フォント）
	FetchTimeout time.Duration // 画像取得のタイムアウト
	Workers      int           // 画像取得ワーカー数
	CacheSize    int           // 画像キャッシュの最大件数
	CardScale    int           // 保存カードの拡大倍率
}

// Load 環境変数（と任意の .env）から設定を読み込む
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	timeoutSec := getEnvInt("ANITRIP_FETCH_TIMEOUT_SEC", 5)

	return &Config{
		DatasetPath:  getEnv("ANITRIP_DATASET", "你的名字.json"),
		LedgerPath:   getEnv("ANITRIP_LEDGER", "visited.json"),
		OutputDir:    getEnv("ANITRIP_OUTPUT_DIR", "my_trip_memories"),
		FontPath:     getEnv("ANITRIP_FONT", ""),
		FetchTimeout: time.Duration(timeoutSec) * time.Second,
		Workers:      getEnvInt("ANITRIP_WORKERS", 4),
		CacheSize:    getEnvInt("ANITRIP_CACHE_SIZE", 128),
		CardScale:    getEnvInt("ANITRIP_CARD_SCALE", 3),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
