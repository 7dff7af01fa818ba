// Package models はカフェディレクトリの永続化エンティティを定義します。
package models

// City はカフェが属する都市のマスタデータです。通常運用では読み取り専用です。
type City struct {
	Code  string `gorm:"primaryKey;size:32"`
	Name  string `gorm:"not null"`
	State string `gorm:"size:2;not null"`
}

// TableName は複数形のテーブル名を明示します。
func (City) TableName() string {
	return "cities"
}
