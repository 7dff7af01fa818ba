// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // HTTPサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// セッション設定
	SecretKey string // セッションクッキー署名用の秘密鍵

	// データベース設定
	DatabaseURL string // PostgreSQL接続URL（空の場合はSQLiteにフォールバック）
	SQLitePath  string // ローカル開発用SQLiteファイルのパス
	SQLEcho     bool   // SQLログを出力するかどうか
	SeedOnEmpty bool   // citiesテーブルが空の場合に初期データを投入するか

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// 地図設定
	GMapsAPIKey string // Google Maps Embed API のキー

	// スナップショットジョブ設定
	QueueRedisURL         string // Asynq用Redis接続URL
	SnapshotDir           string // 地図スナップショットの保存先ディレクトリ
	SnapshotExpireMinutes int    // スナップショットジョブ状態の有効期限（分）
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "5001"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// セッション設定
		SecretKey: getEnv("SECRET_KEY", ""),

		// データベース設定
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "data/cafe-compass.db"),
		SQLEcho:     getEnvAsBool("SQL_ECHO", false),
		SeedOnEmpty: getEnvAsBool("SEED_ON_EMPTY", true),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5001"),

		// 地図設定
		GMapsAPIKey: getEnv("GMAPS_API_KEY", ""),

		// スナップショットジョブ設定
		QueueRedisURL:         getEnv("QUEUE_REDIS_URL", ""),
		SnapshotDir:           getEnv("SNAPSHOT_DIR", "data/snapshots"),
		SnapshotExpireMinutes: getEnvAsInt("SNAPSHOT_EXPIRE_MINUTES", 60),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発では秘密鍵は任意
	// 本番環境では厳格にチェックする想定
	if c.GinMode == "release" {
		if c.SecretKey == "" {
			return fmt.Errorf("SECRET_KEY is required in release mode")
		}
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in release mode")
		}
	}

	return nil
}

// SnapshotsEnabled は地図スナップショットの事前取得を行うかどうかを返します。
func (c *Config) SnapshotsEnabled() bool {
	return c.QueueRedisURL != "" && c.GMapsAPIKey != ""
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
