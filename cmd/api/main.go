// Package main はカフェディレクトリサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yourusername/cafe-compass/internal/auth"
	"github.com/yourusername/cafe-compass/internal/cafes"
	"github.com/yourusername/cafe-compass/internal/config"
	"github.com/yourusername/cafe-compass/internal/database"
	"github.com/yourusername/cafe-compass/internal/likes"
	"github.com/yourusername/cafe-compass/internal/maps"
	"github.com/yourusername/cafe-compass/internal/users"
	"github.com/yourusername/cafe-compass/internal/web"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// データベース接続とスキーマ準備
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if cfg.SeedOnEmpty {
		seeded, err := database.SeedIfEmpty(db)
		if err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
		if seeded {
			log.Print("Seeded initial cities, cafes and users")
		}
	}

	// Ginルーターの初期化
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), web.RequestID())

	// セッションストアの設定（クッキー署名鍵は必須）
	store := cookie.NewStore([]byte(cfg.SecretKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   auth.SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	// CORSミドルウェアの設定（お気に入りAPIは別オリジンからも呼ばれる）
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"X-Request-ID",
	}
	router.Use(cors.New(corsConfig))

	// テンプレートと静的ファイル
	router.LoadHTMLGlob("web/templates/*.html")
	router.Static("/static", "./web/static")

	// ルーティングの設定
	snapshots := setupRoutes(router, cfg, db)

	// サーバーの起動
	addr := ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Starting server on %s (mode: %s)", addr, cfg.GinMode)

	// シグナルを受けたらワーカーとサーバーを順に止める
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Print("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if snapshots != nil {
		if err := snapshots.manager.Shutdown(ctx); err != nil {
			log.Printf("Snapshot worker shutdown: %v", err)
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "cafe-compass",
		"version": "0.1.0",
	})
}

// setupRoutes はページと API の配線を行います。スナップショットジョブが
// 有効な場合、シャットダウン用にその配線を返します（無効なら nil）。
func setupRoutes(router *gin.Engine, cfg *config.Config, db *gorm.DB) *snapshotSupport {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	authManager := auth.NewManager(db)
	creds := auth.NewCredentialService(db)
	authHandler := auth.NewHandler(creds)

	likeService := likes.NewService(db)
	cafeService := cafes.NewService(db)
	embedder := maps.NewEmbedder(cfg.GMapsAPIKey)

	// スナップショットジョブは Redis と地図APIキーが揃っている場合のみ有効
	var scheduler cafes.SnapshotScheduler
	var snapshots *snapshotSupport
	if cfg.SnapshotsEnabled() {
		support, err := setupSnapshots(cfg, db, embedder)
		if err != nil {
			log.Printf("Map snapshots disabled: %v", err)
		} else {
			support.manager.StartWorkers()
			scheduler = support
			snapshots = support
		}
	}

	cafeHandler := cafes.NewHandler(cafeService, embedder, scheduler)
	userHandler := users.NewHandler(creds, likeService)

	// 全ルート共通: セッションからログイン済みユーザーを解決し、
	// 状態を変えるリクエストは CSRF トークンを検証する
	router.Use(authManager.LoadCurrentUser())
	router.Use(authManager.VerifyCSRF())

	// ホーム
	router.GET("/", func(c *gin.Context) {
		web.Render(c, http.StatusOK, "homepage.html", gin.H{
			"Title": "Cafe Compass",
		})
	})

	// 認証
	router.GET("/signup", authHandler.ShowSignup)
	router.POST("/signup", authHandler.HandleSignup)
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", authHandler.HandleLogin)
	router.POST("/logout", authHandler.HandleLogout)

	// カフェ（閲覧は誰でも、CRUDは管理者のみ）
	router.GET("/cafes", cafeHandler.ShowList)

	admin := router.Group("/cafes")
	admin.Use(authManager.RequireAdmin())
	{
		admin.GET("/add", cafeHandler.ShowAdd)
		admin.POST("/add", cafeHandler.HandleAdd)
		admin.GET("/:id/edit", cafeHandler.ShowEdit)
		admin.POST("/:id/edit", cafeHandler.HandleEdit)
		admin.GET("/:id/delete", cafeHandler.ShowDelete)
		admin.POST("/:id/delete", cafeHandler.HandleDelete)
	}

	// 詳細はワイルドカードなので追加・編集ルートの後に登録する
	router.GET("/cafes/:id", cafeHandler.ShowDetail)

	// プロフィール（要ログイン）
	profile := router.Group("/profile")
	profile.Use(authManager.RequireLogin())
	{
		profile.GET("", userHandler.ShowProfile)
		profile.GET("/edit", userHandler.ShowEdit)
		profile.POST("/edit", userHandler.HandleEdit)
	}

	// お気に入り JSON API（要ログイン、エラーはJSONで返す）
	api := router.Group("/api")
	api.Use(authManager.RequireLoginJSON())
	{
		api.GET("/likes", likes.StatusHandler(likeService))
		api.POST("/like", likes.LikeHandler(likeService))
		api.POST("/unlike", likes.UnlikeHandler(likeService))
		if snapshots != nil {
			api.GET("/snapshots/:id", snapshotStatusHandler(snapshots.manager))
		}
	}

	return snapshots
}
