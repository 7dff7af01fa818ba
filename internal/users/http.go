// Package users はプロフィールの表示と編集ルートを担当します。
package users

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/cafe-compass/internal/auth"
	"github.com/yourusername/cafe-compass/internal/models"
	"github.com/yourusername/cafe-compass/internal/web"
)

// LikedLister はプロフィールページに載せるお気に入り一覧の取得操作です。
type LikedLister interface {
	LikedCafes(user *models.User) ([]models.Cafe, error)
}

// Handler はプロフィール関連のHTMLルートを担当します。
type Handler struct {
	creds *auth.CredentialService
	likes LikedLister
}

// NewHandler は Handler を作成します。
func NewHandler(creds *auth.CredentialService, likes LikedLister) *Handler {
	return &Handler{creds: creds, likes: likes}
}

type profileForm struct {
	Email       string
	FirstName   string
	LastName    string
	Description string
	ImageURL    string
}

func (f *profileForm) bind(c *gin.Context) {
	f.Email = strings.TrimSpace(c.PostForm("email"))
	f.FirstName = strings.TrimSpace(c.PostForm("first_name"))
	f.LastName = strings.TrimSpace(c.PostForm("last_name"))
	f.Description = strings.TrimSpace(c.PostForm("description"))
	f.ImageURL = strings.TrimSpace(c.PostForm("image_url"))
}

func (f *profileForm) validate() map[string]string {
	problems := map[string]string{}
	if f.Email == "" || !strings.Contains(f.Email, "@") {
		problems["email"] = "A valid email is required."
	}
	if f.FirstName == "" {
		problems["first_name"] = "First name is required."
	}
	if f.LastName == "" {
		problems["last_name"] = "Last name is required."
	}
	if !web.ValidURL(f.ImageURL) {
		problems["image_url"] = "Image must be a valid URL."
	}
	return problems
}

// ShowProfile は GET /profile のハンドラーです。
func (h *Handler) ShowProfile(c *gin.Context) {
	user := auth.UserFromContext(c)

	liked, err := h.likes.LikedCafes(user)
	if err != nil {
		liked = nil
	}

	web.Render(c, http.StatusOK, "profile.html", gin.H{
		"Title":      user.FullName(),
		"User":       user,
		"LikedCafes": liked,
	})
}

// ShowEdit は GET /profile/edit のハンドラーです。
func (h *Handler) ShowEdit(c *gin.Context) {
	user := auth.UserFromContext(c)

	web.Render(c, http.StatusOK, "profile-edit.html", gin.H{
		"Title":    "Edit Profile",
		"Problems": map[string]string{},
		"Form": &profileForm{
			Email:       user.Email,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			Description: user.Description,
			ImageURL:    user.ImageURL,
		},
	})
}

// HandleEdit は POST /profile/edit のハンドラーです。ユーザー名と
// 管理者フラグはこのフォームからは変更できません。
func (h *Handler) HandleEdit(c *gin.Context) {
	user := auth.UserFromContext(c)

	var form profileForm
	form.bind(c)

	problems := form.validate()
	if len(problems) > 0 {
		web.Render(c, http.StatusOK, "profile-edit.html", gin.H{
			"Title":    "Edit Profile",
			"Form":     &form,
			"Problems": problems,
		})
		return
	}

	err := h.creds.UpdateProfile(user, auth.ProfileInput{
		Email:       form.Email,
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		Description: form.Description,
		ImageURL:    form.ImageURL,
	})
	if err != nil {
		web.Render(c, http.StatusOK, "profile-edit.html", gin.H{
			"Title":    "Edit Profile",
			"Form":     &form,
			"Problems": map[string]string{"form": "Could not save your profile. Please try again."},
		})
		return
	}

	auth.Flash(c, "Profile edited.")
	c.Redirect(http.StatusFound, "/profile")
}
