package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotKeyPrefix = "snapshot:"

	// 同時更新で WATCH が競合したときの再試行上限です。
	maxUpdateRetries = 5
)

// Store はスナップショットジョブの状態を Redis に保存します。
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore は Store を作成します。
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{
		rdb: rdb,
		ttl: ttl,
	}
}

// Get はジョブ情報を取得します。存在しない場合は nil を返します。
func (s *Store) Get(ctx context.Context, cafeID uint) (*Record, error) {
	if cafeID == 0 {
		return nil, fmt.Errorf("cafeID is required")
	}
	data, err := s.rdb.Get(ctx, snapshotKey(cafeID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert はジョブ情報を保存します（存在しない場合は作成）。
func (s *Store) Upsert(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.ExpiresAt.IsZero() && s.ttl > 0 {
		record.ExpiresAt = record.CreatedAt.Add(s.ttl)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, snapshotKey(record.CafeID), payload, s.ttl).Err()
}

// MarkDone はジョブ完了時の情報を保存します。
func (s *Store) MarkDone(ctx context.Context, cafeID uint, snapshotPath string) error {
	return s.updatePartial(ctx, cafeID, func(record *Record) {
		record.Status = StatusSucceeded
		record.SnapshotPath = snapshotPath
		record.Error = nil
	})
}

// MarkFailed はジョブ失敗時の情報を保存します。
func (s *Store) MarkFailed(ctx context.Context, cafeID uint, errInfo *ErrorInfo) error {
	return s.updatePartial(ctx, cafeID, func(record *Record) {
		record.Status = StatusFailed
		if errInfo != nil {
			record.Error = errInfo
		}
	})
}

// updatePartial は get-mutate-set を WATCH で囲んで実行します。キーが
// ワーカーと投入側から同時に書かれても途中の更新が消えないように、
// 競合した場合は読み直して再試行します。
func (s *Store) updatePartial(ctx context.Context, cafeID uint, mutate func(*Record)) error {
	key := snapshotKey(cafeID)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				return fmt.Errorf("snapshot job not found: cafe=%d", cafeID)
			}
			return err
		}
		var record Record
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		mutate(&record)
		record.UpdatedAt = time.Now().UTC()
		payload, err := json.Marshal(&record)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
	return fmt.Errorf("snapshot job update kept conflicting: cafe=%d", cafeID)
}

func snapshotKey(cafeID uint) string {
	return fmt.Sprintf("%s%d", snapshotKeyPrefix, cafeID)
}
