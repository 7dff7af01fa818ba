package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yourusername/cafe-compass/internal/config"
	"github.com/yourusername/cafe-compass/internal/jobs"
	"github.com/yourusername/cafe-compass/internal/maps"
	"github.com/yourusername/cafe-compass/internal/storage"
)

// snapshotSupport は地図スナップショットジョブの配線をまとめたものです。
// cafes.SnapshotScheduler として、作成・編集後のジョブ投入に使われます。
type snapshotSupport struct {
	manager *jobs.Manager
}

func (s *snapshotSupport) Schedule(ctx context.Context, cafeID uint) error {
	_, err := s.manager.Enqueue(ctx, cafeID)
	return err
}

func setupSnapshots(cfg *config.Config, db *gorm.DB, embedder *maps.Embedder) (*snapshotSupport, error) {
	opt, err := redis.ParseURL(cfg.QueueRedisURL)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(opt)
	ttlMinutes := cfg.SnapshotExpireMinutes
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	store := jobs.NewStore(redisClient, time.Duration(ttlMinutes)*time.Minute)

	local, err := storage.NewLocal(cfg.SnapshotDir)
	if err != nil {
		return nil, err
	}

	manager, err := jobs.NewManager(cfg.QueueRedisURL, db, store, local, embedder, log.Default())
	if err != nil {
		return nil, err
	}
	return &snapshotSupport{manager: manager}, nil
}

// snapshotStatusHandler は GET /api/snapshots/:id のハンドラーを返します。
func snapshotStatusHandler(manager *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cafeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || cafeID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cafe id is required"})
			return
		}

		record, err := manager.GetRecord(c.Request.Context(), uint(cafeID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No snapshot job for this cafe."})
			return
		}

		payload := gin.H{
			"cafeId":    record.CafeID,
			"status":    record.Status,
			"updatedAt": record.UpdatedAt,
		}
		if record.SnapshotPath != "" {
			payload["snapshotPath"] = record.SnapshotPath
		}
		if record.Error != nil {
			payload["error"] = record.Error
		}

		c.JSON(http.StatusOK, payload)
	}
}
