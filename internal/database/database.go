// Package database はリレーショナルストアへの接続とスキーマ管理を提供します。
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/cafe-compass/internal/config"
	"github.com/yourusername/cafe-compass/internal/models"
)

// Open はデータベース接続を確立します。DATABASE_URL が設定されていれば
// PostgreSQL、なければローカルの SQLite ファイルに接続します。
// TranslateError を有効にして、一意制約違反をドライバ非依存の
// gorm.ErrDuplicatedKey として受け取れるようにします。
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.Default
	if !cfg.SQLEcho {
		gormLogger = gormLogger.LogMode(logger.Silent)
	}

	gormConfig := &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	}

	if cfg.DatabaseURL != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

// AutoMigrate は全エンティティのスキーマを作成・更新します。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.City{},
		&models.Cafe{},
		&models.User{},
		&models.Specialty{},
		&models.Like{},
	)
}
