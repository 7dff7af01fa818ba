package database

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yourusername/cafe-compass/internal/models"
)

// SeedIfEmpty は cities テーブルが空の場合に初期データを投入します。
// 投入済みのデータベースに対しては何もしません。
func SeedIfEmpty(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&models.City{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count cities: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if err := Seed(db); err != nil {
		return false, err
	}
	return true, nil
}

// Seed は都市・カフェ・看板メニュー・ユーザー・お気に入りの初期データを
// 1トランザクションで投入します。
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		cities := []models.City{
			{Code: "sf", Name: "San Francisco", State: "CA"},
			{Code: "berk", Name: "Berkeley", State: "CA"},
			{Code: "oak", Name: "Oakland", State: "CA"},
			{Code: "jackson", Name: "Jackson Heights", State: "NY"},
		}
		if err := tx.Create(&cities).Error; err != nil {
			return fmt.Errorf("seed cities: %w", err)
		}

		cafes := []models.Cafe{
			{
				Name: "Bernie's Cafe",
				Description: "Serving locals in Noe Valley. A great place to sit and write" +
					" and write Rithm exercises.",
				Address:  "3966 24th St",
				CityCode: "sf",
				URL:      "https://www.yelp.com/biz/bernies-san-francisco",
				ImageURL: "https://s3-media4.fl.yelpcdn.com/bphoto/bVCa2JefOCqxQsM6yWrC-A/o.jpg",
			},
			{
				Name: "Perch Coffee",
				Description: "Hip and sleek place to get cardamom lattés when biking" +
					" around Oakland.",
				Address:  "440 Grand Ave",
				CityCode: "oak",
				URL:      "https://perchoffee.com",
				ImageURL: "https://s3-media4.fl.yelpcdn.com/bphoto/0vhzcgkzIUIEPIyL2rF_YQ/o.jpg",
			},
			{
				Name: "Caffé Bene",
				Description: "Coffeehouse chain with a relaxed European vibe & a menu of" +
					" sweet treats & sandwiches.",
				Address:  "80-25 37th Ave",
				CityCode: "jackson",
				URL:      "http://www.caffebene.co.kr/",
				ImageURL: "https://lh3.googleusercontent.com/p/AF1QipOv3ESP5NMHku6ctfsQ_nm918CivEEvt0bImwt9=s680-w680-h510",
			},
		}
		if err := tx.Create(&cafes).Error; err != nil {
			return fmt.Errorf("seed cafes: %w", err)
		}

		specialties := []models.Specialty{
			{
				Name:   "Cardamom Latté",
				Type:   "beverage",
				CafeID: cafes[1].ID,
				Description: "Creamy and fragrant, it brings a floral and peppery note" +
					" to your day.",
				ImageURL: "https://aubreyskitchen.com/wp-content/uploads/2020/10/Cardamom-Latte-portrait.jpg",
			},
			{
				Name:   "Blueberry Biscuit",
				Type:   "dessert",
				CafeID: cafes[0].ID,
			},
			{
				Name:   "Hot Chocolate",
				Type:   "beverage",
				CafeID: cafes[0].ID,
				Description: "Made with 100% cocoa and a touch of Bernie's special chili" +
					" spice blend. Satisfyingly rich!",
				ImageURL: "https://backforseconds.com/wp-content/uploads/2017/11/Best-Homemade-Hot-Chocolate-EVER-FG.jpg",
			},
		}
		if err := tx.Create(&specialties).Error; err != nil {
			return fmt.Errorf("seed specialties: %w", err)
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}

		users := []models.User{
			{
				Username:       "admin",
				Admin:          true,
				FirstName:      "Addie",
				LastName:       "MacAdmin",
				Description:    "I am the very model of the modern model administrator.",
				Email:          "admin@test.com",
				ImageURL:       models.DefaultUserImageURL,
				HashedPassword: string(hashed),
			},
			{
				Username:       "test",
				FirstName:      "Testy",
				LastName:       "MacTest",
				Description:    "I am the ultimate representative user.",
				Email:          "test@test.com",
				ImageURL:       models.DefaultUserImageURL,
				HashedPassword: string(hashed),
			},
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("seed users: %w", err)
		}

		likes := []models.Like{
			{CafeID: cafes[0].ID, UserID: users[1].ID},
			{CafeID: cafes[1].ID, UserID: users[1].ID},
			{CafeID: cafes[0].ID, UserID: users[0].ID},
		}
		if err := tx.Create(&likes).Error; err != nil {
			return fmt.Errorf("seed likes: %w", err)
		}

		return nil
	})
}
