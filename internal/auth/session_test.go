package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/cafe-compass/internal/models"
)

func newSessionRouter(t *testing.T, manager *Manager) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions(SessionCookieName, store))
	router.Use(manager.LoadCurrentUser())
	return router
}

// loginAndCookies はログインだけを行うルートを叩き、セッションクッキーを返します。
func loginAndCookies(t *testing.T, router *gin.Engine, userID uint) []*http.Cookie {
	t.Helper()

	router.POST("/test-login", func(c *gin.Context) {
		if err := Login(c, &models.User{ID: userID}); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/test-login", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login helper failed with status %d", rec.Code)
	}
	return rec.Result().Cookies()
}

func TestRequireLoginRedirectsAnonymous(t *testing.T) {
	manager := NewManager(newTestDB(t))
	router := newSessionRouter(t, manager)
	router.GET("/profile", manager.RequireLogin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	db := newTestDB(t)
	user := models.User{Username: "testy", HashedPassword: "x", ImageURL: models.DefaultUserImageURL}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	manager := NewManager(db)
	router := newSessionRouter(t, manager)
	cookies := loginAndCookies(t, router, user.ID)
	router.GET("/cafes/add", manager.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/cafes/add", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/cafes" {
		t.Fatalf("expected redirect to /cafes, got %q", loc)
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	db := newTestDB(t)
	user := models.User{Username: "admin", Admin: true, HashedPassword: "x", ImageURL: models.DefaultUserImageURL}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	manager := NewManager(db)
	router := newSessionRouter(t, manager)
	cookies := loginAndCookies(t, router, user.ID)
	router.GET("/cafes/add", manager.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/cafes/add", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireLoginJSONRejectsAnonymous(t *testing.T) {
	manager := NewManager(newTestDB(t))
	router := newSessionRouter(t, manager)
	router.GET("/api/likes", manager.RequireLoginJSON(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/likes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != `{"error":"Not logged in"}` {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestLoadCurrentUserStaleSession(t *testing.T) {
	db := newTestDB(t)
	manager := NewManager(db)
	router := newSessionRouter(t, manager)
	// 存在しないユーザーIDを指すセッションは匿名として扱う
	cookies := loginAndCookies(t, router, 424242)
	router.GET("/whoami", func(c *gin.Context) {
		if UserFromContext(c) == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, "logged-in")
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Fatalf("expected anonymous, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestReadUserID(t *testing.T) {
	cases := []struct {
		in   interface{}
		want uint
	}{
		{int64(5), 5},
		{int(7), 7},
		{uint(9), 9},
		{float64(3), 3},
		{int64(-1), 0},
		{"5", 0},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := readUserID(tc.in); got != tc.want {
			t.Errorf("readUserID(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
