package likes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/cafe-compass/internal/auth"
	"github.com/yourusername/cafe-compass/internal/models"
)

// LikeService はお気に入りAPIのハンドラーが必要とする操作です。
type LikeService interface {
	Like(user *models.User, cafeID uint) error
	Unlike(user *models.User, cafeID uint) error
	IsLiked(user *models.User, cafeID uint) (bool, error)
}

type likeRequest struct {
	CafeID uint `json:"cafe_id" binding:"required"`
}

// StatusHandler は GET /api/likes?cafe_id= のハンドラーを返します。
func StatusHandler(svc LikeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cafeID, err := strconv.ParseUint(c.Query("cafe_id"), 10, 64)
		if err != nil || cafeID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cafe_id is required"})
			return
		}

		liked, err := svc.IsLiked(auth.UserFromContext(c), uint(cafeID))
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"likes": liked})
	}
}

// LikeHandler は POST /api/like のハンドラーを返します。
func LikeHandler(svc LikeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req likeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cafe_id is required"})
			return
		}

		if err := svc.Like(auth.UserFromContext(c), req.CafeID); err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"liked": req.CafeID})
	}
}

// UnlikeHandler は POST /api/unlike のハンドラーを返します。
func UnlikeHandler(svc LikeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req likeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cafe_id is required"})
			return
		}

		if err := svc.Unlike(auth.UserFromContext(c), req.CafeID); err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unliked": req.CafeID})
	}
}

// respondWithError はドメインエラーを API 契約どおりのペイロードに変換します。
// ここに来なかったエラーはユーザーへ詳細を出しません。
func respondWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotLoggedIn):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
	case errors.Is(err, ErrAlreadyLiked):
		c.JSON(http.StatusOK, gin.H{"error": "Already in likes."})
	case errors.Is(err, ErrNotLiked):
		c.JSON(http.StatusOK, gin.H{"error": "Not in your likes."})
	case errors.Is(err, ErrCafeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No such cafe."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
	}
}
