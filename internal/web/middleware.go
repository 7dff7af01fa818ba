package web

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID は各リクエストに一意のIDを付けるミドルウェアです。
// クライアントが持ち込んだIDがあればそれを使い、レスポンスヘッダーに
// 反映します。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("web.request_id", requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID はコンテキストからリクエストIDを取り出します。
func GetRequestID(c *gin.Context) string {
	return c.GetString("web.request_id")
}
