// Package web はHTMLページ描画の共通処理を提供します。
package web

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// CurrentUserKey は認証ミドルウェアがログイン済みユーザーを載せる
// コンテキストキーです。
const CurrentUserKey = "web.current_user"

// CSRFTokenKey は CSRF ミドルウェアがセッションのトークンを載せる
// コンテキストキーです。
const CSRFTokenKey = "web.csrf_token"

// Render はテンプレートを描画します。ログイン済みユーザーと
// フラッシュメッセージを全ページ共通のデータとして注入します。
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CurrentUser"] = currentUser(c)
	data["Flashes"] = takeFlashes(c)
	data["CSRFToken"] = c.GetString(CSRFTokenKey)
	c.HTML(status, name, data)
}

// NotFound は404ページを描画します。主キー検索に失敗したハンドラーが
// 生のエラーを返す代わりに使います。
func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "404.html", gin.H{
		"Title": "Not Found",
	})
	c.Abort()
}

// Forbidden は403ページを描画します。CSRF 検証に失敗したリクエストが
// 生のエラーを返す代わりに使います。
func Forbidden(c *gin.Context) {
	Render(c, http.StatusForbidden, "403.html", gin.H{
		"Title": "Forbidden",
	})
	c.Abort()
}

func currentUser(c *gin.Context) interface{} {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil
	}
	return v
}

// takeFlashes は積まれたフラッシュメッセージを取り出して消費します。
func takeFlashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save()

	messages := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}
