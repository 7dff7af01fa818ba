package models

// Like はユーザーとカフェの多対多「お気に入り」関係の結合行です。
// (CafeID, UserID) の複合主キーが唯一の重複防止点であり、同時挿入の
// 直列化もこの一意制約に委ねます。
type Like struct {
	CafeID uint `gorm:"primaryKey;autoIncrement:false"`
	UserID uint `gorm:"primaryKey;autoIncrement:false"`
}

func (Like) TableName() string {
	return "cafes_users"
}
