package models

// Specialty はカフェの看板メニュー（飲み物・デザート等）です。
// 詳細ページでの表示専用で、カフェ削除時に一緒に削除されます。
type Specialty struct {
	ID          uint   `gorm:"primaryKey"`
	CafeID      uint   `gorm:"index;not null"`
	Name        string `gorm:"not null"`
	Type        string `gorm:"size:32;not null"`
	Description string `gorm:"not null;default:''"`
	ImageURL    string `gorm:"not null;default:''"`
}

func (Specialty) TableName() string {
	return "specialties"
}
