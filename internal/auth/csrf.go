package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/cafe-compass/internal/web"
)

const (
	sessionKeyCSRF = "csrf_token"

	// CSRFHeader は JSON API クライアントがトークンを送るヘッダーです。
	CSRFHeader = "X-CSRF-Token"
	// CSRFFormField は HTML フォームの hidden 項目名です。
	CSRFFormField = "csrf_token"
)

// VerifyCSRF は CSRF トークンを検証するミドルウェアを返します。
// セッションごとにトークンを1つ発行してコンテキストに載せ（テンプレート側が
// hidden 項目と meta タグに埋め込む）、安全でないメソッドではフォーム項目
// またはヘッダーのトークンをダブルサブミット方式で照合します。
func (m *Manager) VerifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(sessionKeyCSRF).(string)
		if token == "" {
			fresh, err := generateToken()
			if err != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			token = fresh
			session.Set(sessionKeyCSRF, token)
			_ = session.Save()
		}
		c.Set(web.CSRFTokenKey, token)

		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		received := c.GetHeader(CSRFHeader)
		if received == "" {
			received = c.PostForm(CSRFFormField)
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(received)) != 1 {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "Invalid CSRF token.",
				})
				return
			}
			web.Forbidden(c)
			return
		}
		c.Next()
	}
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
