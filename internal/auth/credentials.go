package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yourusername/cafe-compass/internal/models"
)

const minPasswordLength = 6

// RegisterInput は新規登録フォームから受け取る項目です。
// Admin フラグは公開フォームから受け取らず、常に false で作成します。
type RegisterInput struct {
	Username    string
	Password    string
	Email       string
	FirstName   string
	LastName    string
	Description string
	ImageURL    string
}

// CredentialService はユーザー登録とログイン認証を担います。
type CredentialService struct {
	db *gorm.DB
}

// NewCredentialService は CredentialService を作成します。
func NewCredentialService(db *gorm.DB) *CredentialService {
	return &CredentialService{db: db}
}

// Register はパスワードをハッシュ化してユーザーを作成します。
// 短すぎるパスワードは ErrWeakCredential、ユーザー名の重複は
// ErrDuplicateUsername を返します。重複は一意制約違反を捕捉して
// 変換するため、同時登録のレースでも同じエラーになります。
func (s *CredentialService) Register(input RegisterInput) (*models.User, error) {
	if len(input.Password) < minPasswordLength {
		return nil, ErrWeakCredential
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 空文字の任意項目はここで一度だけ既定値に正規化する
	imageURL := strings.TrimSpace(input.ImageURL)
	if imageURL == "" {
		imageURL = models.DefaultUserImageURL
	}

	user := &models.User{
		Username:       strings.TrimSpace(input.Username),
		Email:          strings.TrimSpace(input.Email),
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Description:    strings.TrimSpace(input.Description),
		ImageURL:       imageURL,
		HashedPassword: string(hashed),
	}

	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate はユーザー名とパスワードを検証します。照合は bcrypt の
// 定数時間比較のみで、平文比較は行いません。
func (s *CredentialService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, ErrBadPassword
	}
	return &user, nil
}

// UpdateProfile はプロフィール編集可能な項目だけを更新します。
// ユーザー名と Admin フラグはここからは変更できません。
func (s *CredentialService) UpdateProfile(user *models.User, input ProfileInput) error {
	imageURL := strings.TrimSpace(input.ImageURL)
	if imageURL == "" {
		imageURL = models.DefaultUserImageURL
	}

	updates := map[string]interface{}{
		"email":       strings.TrimSpace(input.Email),
		"first_name":  strings.TrimSpace(input.FirstName),
		"last_name":   strings.TrimSpace(input.LastName),
		"description": strings.TrimSpace(input.Description),
		"image_url":   imageURL,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// ProfileInput はプロフィール編集フォームから受け取る項目です。
type ProfileInput struct {
	Email       string
	FirstName   string
	LastName    string
	Description string
	ImageURL    string
}
