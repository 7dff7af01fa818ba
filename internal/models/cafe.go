package models

// DefaultCafeImageURL は画像URL未指定時に使用するカフェ画像のパスです。
const DefaultCafeImageURL = "/static/images/default-cafe.jpg"

// Cafe はカフェの掲載情報です。管理者のみが作成・編集・削除できます。
type Cafe struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string `gorm:"not null;default:''"`
	URL         string `gorm:"not null;default:''"`
	Address     string `gorm:"not null"`
	CityCode    string `gorm:"size:32;not null"`
	ImageURL    string `gorm:"not null"`

	City        City        `gorm:"foreignKey:CityCode;references:Code"`
	Specialties []Specialty `gorm:"foreignKey:CafeID"`
}

func (Cafe) TableName() string {
	return "cafes"
}

// CityState は詳細ページ表示用の「都市名, 州」文字列を返します。
// 一覧テンプレートが値スライスから呼ぶため、値レシーバにしています。
func (c Cafe) CityState() string {
	return c.City.Name + ", " + c.City.State
}
