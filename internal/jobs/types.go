package jobs

import "time"

// Status はスナップショットジョブの実行状態を表します。
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "done"
	StatusFailed    Status = "error"
)

// ErrorInfo はジョブ失敗時のエラー情報を保持します。
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Record はカフェ1件ぶんのスナップショットジョブの現在状態です。
type Record struct {
	CafeID       uint       `json:"cafeId"`
	Status       Status     `json:"status"`
	SnapshotPath string     `json:"snapshotPath,omitempty"`
	Error        *ErrorInfo `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
}
