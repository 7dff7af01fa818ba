package cafes

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

func seedCities(t *testing.T, db *gorm.DB) {
	t.Helper()
	cities := []models.City{
		{Code: "sf", Name: "San Francisco", State: "CA"},
		{Code: "oak", Name: "Oakland", State: "CA"},
	}
	if err := db.Create(&cities).Error; err != nil {
		t.Fatalf("failed to seed cities: %v", err)
	}
}

func validInput() CafeInput {
	return CafeInput{
		Name:     "Blue Bottle",
		Address:  "66 Mint St",
		CityCode: "sf",
		URL:      "https://bluebottle.test",
		ImageURL: models.DefaultCafeImageURL,
	}
}

func TestCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	seedCities(t, db)
	svc := NewService(db)

	cafe, err := svc.Create(validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if cafe.ID == 0 {
		t.Fatal("expected cafe to be persisted with an ID")
	}
	if cafe.City.Name != "San Francisco" {
		t.Fatalf("expected city preloaded, got %+v", cafe.City)
	}

	got, err := svc.Get(cafe.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Name != "Blue Bottle" {
		t.Fatalf("unexpected cafe %q", got.Name)
	}
}

func TestGetMissing(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	if _, err := svc.Get(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrdering(t *testing.T) {
	db := newTestDB(t)
	seedCities(t, db)
	svc := NewService(db)

	for _, name := range []string{"Zeta Roast", "Alpha Beans"} {
		input := validInput()
		input.Name = name
		if _, err := svc.Create(input); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	cafes, err := svc.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(cafes) != 2 {
		t.Fatalf("expected 2 cafes, got %d", len(cafes))
	}
	if cafes[0].Name != "Alpha Beans" || cafes[1].Name != "Zeta Roast" {
		t.Fatalf("unexpected order: %q, %q", cafes[0].Name, cafes[1].Name)
	}
}

func TestUpdate(t *testing.T) {
	db := newTestDB(t)
	seedCities(t, db)
	svc := NewService(db)

	cafe, err := svc.Create(validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	input := validInput()
	input.Name = "Sightglass"
	input.CityCode = "oak"
	updated, err := svc.Update(cafe.ID, input)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "Sightglass" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
	if updated.City.Name != "Oakland" {
		t.Fatalf("expected refreshed city, got %+v", updated.City)
	}
}

func TestUpdateMissing(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	if _, err := svc.Update(9999, validInput()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	seedCities(t, db)
	svc := NewService(db)

	cafe, err := svc.Create(validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	user := models.User{Username: "testy", HashedPassword: "x", ImageURL: models.DefaultUserImageURL}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	if err := db.Create(&models.Like{CafeID: cafe.ID, UserID: user.ID}).Error; err != nil {
		t.Fatalf("failed to seed like: %v", err)
	}
	if err := db.Create(&models.Specialty{CafeID: cafe.ID, Name: "Pour over"}).Error; err != nil {
		t.Fatalf("failed to seed specialty: %v", err)
	}

	if err := svc.Delete(cafe.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := svc.Get(cafe.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cafe gone, got %v", err)
	}
	var likeCount, specialtyCount int64
	db.Model(&models.Like{}).Where("cafe_id = ?", cafe.ID).Count(&likeCount)
	db.Model(&models.Specialty{}).Where("cafe_id = ?", cafe.ID).Count(&specialtyCount)
	if likeCount != 0 || specialtyCount != 0 {
		t.Fatalf("expected dependent rows removed, got %d likes / %d specialties", likeCount, specialtyCount)
	}
}

func TestDeleteMissing(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	if err := svc.Delete(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCityChoices(t *testing.T) {
	db := newTestDB(t)
	seedCities(t, db)
	svc := NewService(db)

	cities, err := svc.CityChoices()
	if err != nil {
		t.Fatalf("CityChoices returned error: %v", err)
	}
	if len(cities) != 2 {
		t.Fatalf("expected 2 cities, got %d", len(cities))
	}
	if cities[0].Name != "Oakland" || cities[1].Name != "San Francisco" {
		t.Fatalf("unexpected order: %q, %q", cities[0].Name, cities[1].Name)
	}
}
