// Package storage は取得済み地図スナップショットのローカル保存を提供します。
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local はローカルファイルシステム上のスナップショット置き場です。
type Local struct {
	dir string
}

// NewLocal は保存先ディレクトリを作成して Local を返します。
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Save は名前付きファイルとして内容を保存し、保存先パスを返します。
// 同名ファイルは上書きします（スナップショットは常に最新1枚）。
func (l *Local) Save(name string, r io.Reader) (string, error) {
	path := filepath.Join(l.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write snapshot file: %w", err)
	}
	return path, nil
}

// Path は名前付きファイルの保存先パスを返します。存在しない場合は
// 空文字を返します。
func (l *Local) Path(name string) string {
	path := filepath.Join(l.dir, name)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
