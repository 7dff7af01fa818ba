package likes

import (
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/cafe-compass/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.City{}, &models.Cafe{}, &models.User{}, &models.Specialty{}, &models.Like{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func seedCafeAndUser(t *testing.T, db *gorm.DB) (*models.Cafe, *models.User) {
	t.Helper()

	city := models.City{Code: "sf", Name: "San Francisco", State: "CA"}
	if err := db.Create(&city).Error; err != nil {
		t.Fatalf("failed to seed city: %v", err)
	}
	cafe := models.Cafe{
		Name:     "Test Cafe",
		Address:  "1 Main St",
		CityCode: "sf",
		ImageURL: models.DefaultCafeImageURL,
	}
	if err := db.Create(&cafe).Error; err != nil {
		t.Fatalf("failed to seed cafe: %v", err)
	}
	user := models.User{
		Username:       "testy",
		Email:          "testy@test.com",
		FirstName:      "Testy",
		LastName:       "MacTest",
		ImageURL:       models.DefaultUserImageURL,
		HashedPassword: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return &cafe, &user
}

func countLikes(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Like{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count likes: %v", err)
	}
	return count
}

func TestLikeAndIsLiked(t *testing.T) {
	db := newTestDB(t)
	cafe, user := seedCafeAndUser(t, db)
	svc := NewService(db)

	liked, err := svc.IsLiked(user, cafe.ID)
	if err != nil {
		t.Fatalf("IsLiked returned error: %v", err)
	}
	if liked {
		t.Fatal("expected cafe not to be liked yet")
	}

	if err := svc.Like(user, cafe.ID); err != nil {
		t.Fatalf("Like returned error: %v", err)
	}

	liked, err = svc.IsLiked(user, cafe.ID)
	if err != nil {
		t.Fatalf("IsLiked returned error: %v", err)
	}
	if !liked {
		t.Fatal("expected cafe to be liked")
	}
}

func TestLikeDuplicate(t *testing.T) {
	db := newTestDB(t)
	cafe, user := seedCafeAndUser(t, db)
	svc := NewService(db)

	if err := svc.Like(user, cafe.ID); err != nil {
		t.Fatalf("first Like returned error: %v", err)
	}

	err := svc.Like(user, cafe.ID)
	if !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}

	if got := countLikes(t, db); got != 1 {
		t.Fatalf("expected 1 like row, got %d", got)
	}
}

func TestUnlike(t *testing.T) {
	db := newTestDB(t)
	cafe, user := seedCafeAndUser(t, db)
	svc := NewService(db)

	if err := svc.Like(user, cafe.ID); err != nil {
		t.Fatalf("Like returned error: %v", err)
	}
	if err := svc.Unlike(user, cafe.ID); err != nil {
		t.Fatalf("Unlike returned error: %v", err)
	}
	if got := countLikes(t, db); got != 0 {
		t.Fatalf("expected 0 like rows, got %d", got)
	}
}

func TestUnlikeAbsent(t *testing.T) {
	db := newTestDB(t)
	cafe, user := seedCafeAndUser(t, db)
	svc := NewService(db)

	err := svc.Unlike(user, cafe.ID)
	if !errors.Is(err, ErrNotLiked) {
		t.Fatalf("expected ErrNotLiked, got %v", err)
	}
	if got := countLikes(t, db); got != 0 {
		t.Fatalf("expected store unchanged, got %d rows", got)
	}
}

func TestAnonymousUser(t *testing.T) {
	db := newTestDB(t)
	cafe, _ := seedCafeAndUser(t, db)
	svc := NewService(db)

	if err := svc.Like(nil, cafe.ID); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("Like: expected ErrNotLoggedIn, got %v", err)
	}
	if err := svc.Unlike(nil, cafe.ID); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("Unlike: expected ErrNotLoggedIn, got %v", err)
	}
	if _, err := svc.IsLiked(nil, cafe.ID); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("IsLiked: expected ErrNotLoggedIn, got %v", err)
	}
}

func TestLikeMissingCafe(t *testing.T) {
	db := newTestDB(t)
	_, user := seedCafeAndUser(t, db)
	svc := NewService(db)

	if err := svc.Like(user, 9999); !errors.Is(err, ErrCafeNotFound) {
		t.Fatalf("expected ErrCafeNotFound, got %v", err)
	}
}

func TestLikedCafesOrdering(t *testing.T) {
	db := newTestDB(t)
	cafe, user := seedCafeAndUser(t, db)
	svc := NewService(db)

	other := models.Cafe{
		Name:     "Another Cafe",
		Address:  "2 Main St",
		CityCode: "sf",
		ImageURL: models.DefaultCafeImageURL,
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("failed to seed cafe: %v", err)
	}

	if err := svc.Like(user, cafe.ID); err != nil {
		t.Fatalf("Like returned error: %v", err)
	}
	if err := svc.Like(user, other.ID); err != nil {
		t.Fatalf("Like returned error: %v", err)
	}

	cafes, err := svc.LikedCafes(user)
	if err != nil {
		t.Fatalf("LikedCafes returned error: %v", err)
	}
	if len(cafes) != 2 {
		t.Fatalf("expected 2 liked cafes, got %d", len(cafes))
	}
	if cafes[0].Name != "Another Cafe" || cafes[1].Name != "Test Cafe" {
		t.Fatalf("unexpected order: %q, %q", cafes[0].Name, cafes[1].Name)
	}
	if cafes[0].City.Name != "San Francisco" {
		t.Fatalf("expected city preloaded, got %+v", cafes[0].City)
	}
}
