// Package cafes はカフェ掲載情報のCRUDを提供します。
package cafes

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/cafe-compass/internal/models"
)

// ErrNotFound は主キー検索に失敗したことを表します。
var ErrNotFound = errors.New("no such cafe")

// CafeInput はフォーム境界で正規化済みのカフェ項目です。
// 任意項目の空文字は「未指定」を意味し、ImageURL はこの段階で
// 既定値に解決されています。
type CafeInput struct {
	Name        string
	Description string
	URL         string
	Address     string
	CityCode    string
	ImageURL    string
}

// Service はカフェのCRUD操作を担います。
type Service struct {
	db *gorm.DB
}

// NewService は Service を作成します。
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List は全カフェを名前順で返します。
func (s *Service) List() ([]models.Cafe, error) {
	var cafes []models.Cafe
	if err := s.db.Preload("City").Order("name").Find(&cafes).Error; err != nil {
		return nil, fmt.Errorf("list cafes: %w", err)
	}
	return cafes, nil
}

// Get はカフェを主キーで取得します。見つからない場合は ErrNotFound です。
func (s *Service) Get(id uint) (*models.Cafe, error) {
	var cafe models.Cafe
	err := s.db.Preload("City").Preload("Specialties").First(&cafe, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get cafe: %w", err)
	}
	return &cafe, nil
}

// Create は新しいカフェを保存します。
func (s *Service) Create(input CafeInput) (*models.Cafe, error) {
	cafe := &models.Cafe{
		Name:        input.Name,
		Description: input.Description,
		URL:         input.URL,
		Address:     input.Address,
		CityCode:    input.CityCode,
		ImageURL:    input.ImageURL,
	}
	if err := s.db.Create(cafe).Error; err != nil {
		return nil, fmt.Errorf("create cafe: %w", err)
	}
	return s.Get(cafe.ID)
}

// Update は既存カフェの全項目を入力で置き換えます。
func (s *Service) Update(id uint, input CafeInput) (*models.Cafe, error) {
	cafe, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":        input.Name,
		"description": input.Description,
		"url":         input.URL,
		"address":     input.Address,
		"city_code":   input.CityCode,
		"image_url":   input.ImageURL,
	}
	if err := s.db.Model(&models.Cafe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update cafe: %w", err)
	}
	return s.Get(cafe.ID)
}

// Delete はカフェを削除します。外部キーを孤立させないよう、先に
// お気に入り行と看板メニューを同一トランザクションで削除します。
func (s *Service) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cafe_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if err := tx.Where("cafe_id = ?", id).Delete(&models.Specialty{}).Error; err != nil {
			return fmt.Errorf("delete specialties: %w", err)
		}
		if err := tx.Delete(&models.Cafe{}, id).Error; err != nil {
			return fmt.Errorf("delete cafe: %w", err)
		}
		return nil
	})
}

// CityChoices はフォームの都市セレクト用に全都市を名前順で返します。
func (s *Service) CityChoices() ([]models.City, error) {
	var cities []models.City
	if err := s.db.Order("name").Find(&cities).Error; err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return cities, nil
}
