package cafes

import (
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/cafe-compass/internal/models"
	"github.com/yourusername/cafe-compass/internal/web"
)

const (
	nameMinLen    = 4
	nameMaxLen    = 20
	addressMinLen = 4
	addressMaxLen = 20
)

// cafeForm は追加・編集フォームの生入力です。
type cafeForm struct {
	Name        string
	Description string
	URL         string
	Address     string
	CityCode    string
	ImageURL    string
}

func (f *cafeForm) bind(c *gin.Context) {
	f.Name = strings.TrimSpace(c.PostForm("name"))
	f.Description = strings.TrimSpace(c.PostForm("description"))
	f.URL = strings.TrimSpace(c.PostForm("url"))
	f.Address = strings.TrimSpace(c.PostForm("address"))
	f.CityCode = strings.TrimSpace(c.PostForm("city_code"))
	f.ImageURL = strings.TrimSpace(c.PostForm("image_url"))
}

func formFromCafe(cafe *models.Cafe) *cafeForm {
	return &cafeForm{
		Name:        cafe.Name,
		Description: cafe.Description,
		URL:         cafe.URL,
		Address:     cafe.Address,
		CityCode:    cafe.CityCode,
		ImageURL:    cafe.ImageURL,
	}
}

func (f *cafeForm) validate(cities []models.City) map[string]string {
	problems := map[string]string{}

	// 長さは文字数で数える（バイト数だと多バイト文字の名前が弾かれる）
	if n := utf8.RuneCountInString(f.Name); n < nameMinLen || n > nameMaxLen {
		problems["name"] = "Name must be between 4 and 20 characters."
	}
	if n := utf8.RuneCountInString(f.Address); n < addressMinLen || n > addressMaxLen {
		problems["address"] = "Address must be between 4 and 20 characters."
	}
	if !validCityCode(f.CityCode, cities) {
		problems["city_code"] = "Please choose a city."
	}
	if !web.ValidURL(f.URL) {
		problems["url"] = "URL must be a valid http(s) URL."
	}
	if !web.ValidURL(f.ImageURL) {
		problems["image_url"] = "Image must be a valid http(s) URL."
	}
	return problems
}

// toInput はフォーム入力をエンティティ項目に変換します。任意項目の
// 空文字はここで一度だけ既定値に正規化します。
func (f *cafeForm) toInput() CafeInput {
	imageURL := f.ImageURL
	if imageURL == "" {
		imageURL = models.DefaultCafeImageURL
	}
	return CafeInput{
		Name:        f.Name,
		Description: f.Description,
		URL:         f.URL,
		Address:     f.Address,
		CityCode:    f.CityCode,
		ImageURL:    imageURL,
	}
}

func validCityCode(code string, cities []models.City) bool {
	for _, city := range cities {
		if city.Code == code {
			return true
		}
	}
	return false
}
