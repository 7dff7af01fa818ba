// Package auth はセッションによる認証とルートごとの認可を提供します。
package auth

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yourusername/cafe-compass/internal/models"
	"github.com/yourusername/cafe-compass/internal/web"
)

const (
	SessionCookieName = "cc_session"
	sessionKeyUser    = "curr_user"
)

// ContextUserKey は、ハンドラー間でログイン済みユーザーを共有するためのキーです。
// 描画側が同じ値を読めるよう web パッケージの定数を使います。
const ContextUserKey = web.CurrentUserKey

var maxSessionLifetime = 7 * 24 * time.Hour

// SessionMaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func SessionMaxAgeSeconds() int {
	return int(maxSessionLifetime.Seconds())
}

// リダイレクト時にフラッシュで表示するメッセージです。
const (
	NotLoggedInMsg = "You are not logged in."
	AdminOnlyMsg   = "Only admins can do that."
)

// Manager はセッションからの本人解決とルート認可をまとめた構造体です。
type Manager struct {
	db *gorm.DB
}

// NewManager は認証マネージャーを作成します。
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// LoadCurrentUser は全ルートの前段で実行されるミドルウェアです。
// セッションのユーザーIDから該当行を読み込み、gin コンテキストに載せます。
// 未ログイン（または行が消えている）場合は何も設定しません。
func (m *Manager) LoadCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id := readUserID(session.Get(sessionKeyUser))
		if id == 0 {
			c.Next()
			return
		}

		var user models.User
		if err := m.db.First(&user, id).Error; err != nil {
			// ユーザー行が消えている古いセッションは破棄する
			session.Delete(sessionKeyUser)
			_ = session.Save()
			c.Next()
			return
		}

		c.Set(ContextUserKey, &user)
		c.Next()
	}
}

// UserFromContext はコンテキストからログイン済みユーザーを取り出します。
// 匿名の場合は nil を返します。
func UserFromContext(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// RequireLogin はログイン必須ページを保護するミドルウェアを返します。
// 匿名アクセスはフラッシュ付きでログインページへリダイレクトします。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserFromContext(c) == nil {
			Flash(c, NotLoggedInMsg)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin は管理者専用ページを保護するミドルウェアを返します。
// ログイン確認が先、管理者確認が後です。非管理者は一覧ページへ逃がします。
func (m *Manager) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFromContext(c)
		if user == nil {
			Flash(c, NotLoggedInMsg)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if !user.Admin {
			Flash(c, AdminOnlyMsg)
			c.Redirect(http.StatusFound, "/cafes")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireLoginJSON は JSON API 用の認可ゲートです。匿名アクセスには
// リダイレクトではなくエラーペイロードを返します。
func (m *Manager) RequireLoginJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserFromContext(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Not logged in",
			})
			return
		}
		c.Next()
	}
}

// Login はセッションにユーザーIDを記録します。
func Login(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(sessionKeyUser, int64(user.ID))
	return session.Save()
}

// Logout はセッションを破棄します。
func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}

// Flash は次にレンダリングされるページで一度だけ表示されるメッセージを積みます。
func Flash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	_ = session.Save()
}

// readUserID はセッションに保存されたユーザーIDを型ゆるめに読み取ります。
// ストア実装によって int64 以外で戻ることがあるためです。
func readUserID(v interface{}) uint {
	switch id := v.(type) {
	case int64:
		if id > 0 {
			return uint(id)
		}
	case int:
		if id > 0 {
			return uint(id)
		}
	case uint:
		return id
	case float64:
		if id > 0 {
			return uint(id)
		}
	}
	return 0
}
