// Package jobs はカフェの地図スナップショットを非同期に取得するジョブを管理します。
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/yourusername/cafe-compass/internal/maps"
	"github.com/yourusername/cafe-compass/internal/models"
	"github.com/yourusername/cafe-compass/internal/storage"
)

const (
	taskTypeSnapshot = "maps:snapshot"

	downloadTimeout = 30 * time.Second
)

// Manager はジョブの投入と状態管理を担います。
type Manager struct {
	db       *gorm.DB
	client   *asynq.Client
	server   *asynq.Server
	mux      *asynq.ServeMux
	store    *Store
	local    *storage.Local
	embedder *maps.Embedder
	httpc    *http.Client
	logger   *log.Logger
}

// TaskPayload は地図スナップショットジョブのペイロードです。
type TaskPayload struct {
	CafeID uint `json:"cafeId"`
}

// NewManager は Manager を初期化します。
func NewManager(redisURL string, db *gorm.DB, store *Store, local *storage.Local, embedder *maps.Embedder, logger *log.Logger) (*Manager, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if local == nil {
		return nil, errors.New("storage is nil")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"maps": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	manager := &Manager{
		db:       db,
		client:   client,
		server:   server,
		mux:      mux,
		store:    store,
		local:    local,
		embedder: embedder,
		httpc:    &http.Client{Timeout: downloadTimeout},
		logger:   logger,
	}
	mux.HandleFunc(taskTypeSnapshot, manager.handleSnapshotTask)
	return manager, nil
}

// StartWorkers は Asynq サーバーをバックグラウンドで起動します。
func (m *Manager) StartWorkers() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && err != asynq.ErrServerClosed {
			if m.logger != nil {
				m.logger.Printf("asynq server stopped with error: %v", err)
			} else {
				log.Printf("asynq server stopped with error: %v", err)
			}
		}
	}()
}

// Shutdown はサーバーとクライアントを閉じます。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.server.Shutdown()
	m.client.Close()
	return nil
}

// Enqueue はスナップショットジョブをキューに投入します。
func (m *Manager) Enqueue(ctx context.Context, cafeID uint) (string, error) {
	if cafeID == 0 {
		return "", fmt.Errorf("cafeID is required")
	}

	record := &Record{
		CafeID: cafeID,
		Status: StatusQueued,
	}
	if err := m.store.Upsert(ctx, record); err != nil {
		return "", err
	}

	body, err := json.Marshal(&TaskPayload{CafeID: cafeID})
	if err != nil {
		return "", err
	}

	task := asynq.NewTask(taskTypeSnapshot, body, asynq.Queue("maps"))
	info, err := m.client.EnqueueContext(ctx, task, asynq.MaxRetry(1))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// GetRecord はジョブ情報を取得します。
func (m *Manager) GetRecord(ctx context.Context, cafeID uint) (*Record, error) {
	return m.store.Get(ctx, cafeID)
}

func (m *Manager) handleSnapshotTask(ctx context.Context, task *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}
	if payload.CafeID == 0 {
		return fmt.Errorf("missing cafeId in payload")
	}

	if err := m.store.Upsert(ctx, &Record{
		CafeID: payload.CafeID,
		Status: StatusRunning,
	}); err != nil {
		return err
	}

	path, err := m.fetchSnapshot(ctx, payload.CafeID)
	if err != nil {
		return m.failJobWithError(ctx, payload.CafeID, err)
	}
	return m.store.MarkDone(ctx, payload.CafeID, path)
}

// fetchSnapshot は静的地図画像をダウンロードしてローカルに保存します。
func (m *Manager) fetchSnapshot(ctx context.Context, cafeID uint) (string, error) {
	var cafe models.Cafe
	if err := m.db.Preload("City").First(&cafe, cafeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("cafe not found: %d", cafeID)
		}
		return "", fmt.Errorf("load cafe: %w", err)
	}

	mapURL := m.embedder.StaticMapURL(cafe.Address, cafe.City.Name, cafe.City.State)
	if mapURL == "" {
		return "", errors.New("map api key is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mapURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := m.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch static map: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch static map: unexpected status %d", resp.StatusCode)
	}

	return m.local.Save(SnapshotFilename(cafeID), resp.Body)
}

func (m *Manager) failJobWithError(ctx context.Context, cafeID uint, err error) error {
	return m.store.MarkFailed(ctx, cafeID, &ErrorInfo{
		Code:    "SNAPSHOT_FAILED",
		Message: err.Error(),
	})
}

// SnapshotFilename はカフェIDに対応するスナップショットのファイル名を返します。
func SnapshotFilename(cafeID uint) string {
	return fmt.Sprintf("cafe-%d.png", cafeID)
}
