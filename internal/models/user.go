package models

// DefaultUserImageURL は画像URL未指定時に使用するプロフィール画像のパスです。
const DefaultUserImageURL = "/static/images/default-pic.png"

// User はアプリケーションの利用者です。Admin が true の場合のみカフェの
// CRUD 操作が許可されます。
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Username       string `gorm:"uniqueIndex;not null"`
	Admin          bool   `gorm:"not null;default:false"`
	Email          string `gorm:"not null"`
	FirstName      string `gorm:"not null"`
	LastName       string `gorm:"not null"`
	Description    string `gorm:"not null;default:''"`
	ImageURL       string `gorm:"not null"`
	HashedPassword string `gorm:"not null"`

	LikedCafes []Cafe `gorm:"many2many:cafes_users;joinForeignKey:UserID;joinReferences:CafeID"`
}

func (User) TableName() string {
	return "users"
}

// FullName は「名 姓」形式の表示名を返します。
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
