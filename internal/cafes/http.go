package cafes

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/cafe-compass/internal/auth"
	"github.com/yourusername/cafe-compass/internal/maps"
	"github.com/yourusername/cafe-compass/internal/models"
	"github.com/yourusername/cafe-compass/internal/web"
)

// CafeService はページハンドラーが必要とするCRUD操作です。
type CafeService interface {
	List() ([]models.Cafe, error)
	Get(id uint) (*models.Cafe, error)
	Create(input CafeInput) (*models.Cafe, error)
	Update(id uint, input CafeInput) (*models.Cafe, error)
	Delete(id uint) error
	CityChoices() ([]models.City, error)
}

// SnapshotScheduler は地図スナップショットの事前取得ジョブを投入します。
// 投入の失敗はページ遷移には影響させません。
type SnapshotScheduler interface {
	Schedule(ctx context.Context, cafeID uint) error
}

// Handler はカフェ関連のHTMLルートを担当します。
type Handler struct {
	svc       CafeService
	embedder  *maps.Embedder
	scheduler SnapshotScheduler
}

// NewHandler は Handler を作成します。scheduler は nil でも構いません。
func NewHandler(svc CafeService, embedder *maps.Embedder, scheduler SnapshotScheduler) *Handler {
	return &Handler{svc: svc, embedder: embedder, scheduler: scheduler}
}

// ShowList は GET /cafes のハンドラーです。
func (h *Handler) ShowList(c *gin.Context) {
	cafes, err := h.svc.List()
	if err != nil {
		renderServerError(c)
		return
	}
	web.Render(c, http.StatusOK, "cafe-list.html", gin.H{
		"Title": "Cafes",
		"Cafes": cafes,
	})
}

// ShowDetail は GET /cafes/:id のハンドラーです。
func (h *Handler) ShowDetail(c *gin.Context) {
	cafe, ok := h.lookup(c)
	if !ok {
		return
	}

	web.Render(c, http.StatusOK, "cafe-detail.html", gin.H{
		"Title":  cafe.Name,
		"Cafe":   cafe,
		"MapURL": h.embedder.EmbedURL(cafe.Address, cafe.City.Name, cafe.City.State),
	})
}

// ShowAdd は GET /cafes/add のハンドラーです。
func (h *Handler) ShowAdd(c *gin.Context) {
	cities, err := h.svc.CityChoices()
	if err != nil {
		renderServerError(c)
		return
	}
	web.Render(c, http.StatusOK, "cafe-add.html", gin.H{
		"Title":    "Add Cafe",
		"Form":     &cafeForm{},
		"Cities":   cities,
		"Problems": map[string]string{},
	})
}

// HandleAdd は POST /cafes/add のハンドラーです。成功時は詳細ページへ
// リダイレクトし、バリデーション失敗時はフォームを再表示します。
func (h *Handler) HandleAdd(c *gin.Context) {
	cities, err := h.svc.CityChoices()
	if err != nil {
		renderServerError(c)
		return
	}

	var form cafeForm
	form.bind(c)

	problems := form.validate(cities)
	if len(problems) > 0 {
		web.Render(c, http.StatusOK, "cafe-add.html", gin.H{
			"Title":    "Add Cafe",
			"Form":     &form,
			"Cities":   cities,
			"Problems": problems,
		})
		return
	}

	cafe, err := h.svc.Create(form.toInput())
	if err != nil {
		renderServerError(c)
		return
	}

	h.scheduleSnapshot(c, cafe.ID)
	auth.Flash(c, cafe.Name+" added!")
	c.Redirect(http.StatusFound, "/cafes/"+strconv.FormatUint(uint64(cafe.ID), 10))
}

// ShowEdit は GET /cafes/:id/edit のハンドラーです。
func (h *Handler) ShowEdit(c *gin.Context) {
	cafe, ok := h.lookup(c)
	if !ok {
		return
	}

	cities, err := h.svc.CityChoices()
	if err != nil {
		renderServerError(c)
		return
	}
	web.Render(c, http.StatusOK, "cafe-edit.html", gin.H{
		"Title":    "Edit " + cafe.Name,
		"Cafe":     cafe,
		"Form":     formFromCafe(cafe),
		"Cities":   cities,
		"Problems": map[string]string{},
	})
}

// HandleEdit は POST /cafes/:id/edit のハンドラーです。
func (h *Handler) HandleEdit(c *gin.Context) {
	cafe, ok := h.lookup(c)
	if !ok {
		return
	}

	cities, err := h.svc.CityChoices()
	if err != nil {
		renderServerError(c)
		return
	}

	var form cafeForm
	form.bind(c)

	problems := form.validate(cities)
	if len(problems) > 0 {
		web.Render(c, http.StatusOK, "cafe-edit.html", gin.H{
			"Title":    "Edit " + cafe.Name,
			"Cafe":     cafe,
			"Form":     &form,
			"Cities":   cities,
			"Problems": problems,
		})
		return
	}

	updated, err := h.svc.Update(cafe.ID, form.toInput())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			web.NotFound(c)
			return
		}
		renderServerError(c)
		return
	}

	h.scheduleSnapshot(c, updated.ID)
	auth.Flash(c, updated.Name+" edited!")
	c.Redirect(http.StatusFound, "/cafes/"+strconv.FormatUint(uint64(updated.ID), 10))
}

// ShowDelete は GET /cafes/:id/delete の確認ページを表示します。
func (h *Handler) ShowDelete(c *gin.Context) {
	cafe, ok := h.lookup(c)
	if !ok {
		return
	}
	web.Render(c, http.StatusOK, "cafe-delete.html", gin.H{
		"Title": "Delete " + cafe.Name,
		"Cafe":  cafe,
	})
}

// HandleDelete は POST /cafes/:id/delete のハンドラーです。依存する
// お気に入り行の掃除はサービス側のトランザクションで行われます。
func (h *Handler) HandleDelete(c *gin.Context) {
	cafe, ok := h.lookup(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(cafe.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			web.NotFound(c)
			return
		}
		renderServerError(c)
		return
	}

	auth.Flash(c, cafe.Name+" deleted.")
	c.Redirect(http.StatusFound, "/cafes")
}

func (h *Handler) lookup(c *gin.Context) (*models.Cafe, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		web.NotFound(c)
		return nil, false
	}

	cafe, err := h.svc.Get(uint(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			web.NotFound(c)
			return nil, false
		}
		renderServerError(c)
		return nil, false
	}
	return cafe, true
}

func (h *Handler) scheduleSnapshot(c *gin.Context, cafeID uint) {
	if h.scheduler == nil {
		return
	}
	if err := h.scheduler.Schedule(c.Request.Context(), cafeID); err != nil {
		log.Printf("failed to schedule map snapshot cafe=%d: %v", cafeID, err)
	}
}

func renderServerError(c *gin.Context) {
	web.Render(c, http.StatusInternalServerError, "500.html", gin.H{
		"Title": "Something went wrong",
	})
	c.Abort()
}
