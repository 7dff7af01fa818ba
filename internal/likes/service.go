// Package likes はユーザーとカフェの「お気に入り」関係を管理します。
package likes

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/cafe-compass/internal/models"
)

// 回復可能なドメインエラーです。呼び出し側で JSON のエラーペイロードに
// 変換されます。
var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrAlreadyLiked = errors.New("already in likes")
	ErrNotLiked     = errors.New("not in likes")
	ErrCafeNotFound = errors.New("no such cafe")
)

// Service はお気に入り関係の追加・削除・照会を提供します。
// アプリケーション側でのロックは行わず、同じ組の同時挿入は複合主キーの
// 一意制約だけで直列化されます。
type Service struct {
	db *gorm.DB
}

// NewService は Service を作成します。
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Like は (user, cafe) の組を登録します。既に登録済みの場合は
// ErrAlreadyLiked を返します。一意制約違反もここで同じエラーに
// 変換されるため、同時挿入のレースでも未処理の失敗にはなりません。
func (s *Service) Like(user *models.User, cafeID uint) error {
	if user == nil {
		return ErrNotLoggedIn
	}
	if err := s.ensureCafe(cafeID); err != nil {
		return err
	}

	like := models.Like{CafeID: cafeID, UserID: user.ID}
	if err := s.db.Create(&like).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyLiked
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

// Unlike は (user, cafe) の組を削除します。登録されていない場合は
// ErrNotLiked を返し、ストアの状態は変更されません。
func (s *Service) Unlike(user *models.User, cafeID uint) error {
	if user == nil {
		return ErrNotLoggedIn
	}

	result := s.db.Where("cafe_id = ? AND user_id = ?", cafeID, user.ID).
		Delete(&models.Like{})
	if result.Error != nil {
		return fmt.Errorf("delete like: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotLiked
	}
	return nil
}

// IsLiked は (user, cafe) の組が登録されているかどうかを返します。
// 副作用のない純粋な照会です。
func (s *Service) IsLiked(user *models.User, cafeID uint) (bool, error) {
	if user == nil {
		return false, ErrNotLoggedIn
	}

	var count int64
	err := s.db.Model(&models.Like{}).
		Where("cafe_id = ? AND user_id = ?", cafeID, user.ID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count likes: %w", err)
	}
	return count > 0, nil
}

// LikedCafes はユーザーのお気に入りカフェを名前順で返します。
func (s *Service) LikedCafes(user *models.User) ([]models.Cafe, error) {
	if user == nil {
		return nil, ErrNotLoggedIn
	}

	var cafes []models.Cafe
	err := s.db.
		Joins("JOIN cafes_users ON cafes_users.cafe_id = cafes.id").
		Where("cafes_users.user_id = ?", user.ID).
		Preload("City").
		Order("cafes.name").
		Find(&cafes).Error
	if err != nil {
		return nil, fmt.Errorf("list liked cafes: %w", err)
	}
	return cafes, nil
}

func (s *Service) ensureCafe(cafeID uint) error {
	var count int64
	if err := s.db.Model(&models.Cafe{}).Where("id = ?", cafeID).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup cafe: %w", err)
	}
	if count == 0 {
		return ErrCafeNotFound
	}
	return nil
}
