package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kejsan/makina-ime/internal/store"
	"github.com/Kejsan/makina-ime/pkg/event"
	"github.com/Kejsan/makina-ime/pkg/middleware"
)

// Options はサーバーの設定。
type Options struct {
	// JWTSecret はJWTの検証に使う共有鍵。
	JWTSecret string
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string
	// DevTokens は開発用JWTの発行エンドポイントを有効にするかどうか。
	DevTokens bool
}

// Server はmakina-apiのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// store はリマインダーと通知の保存先。
	store *store.Store
	// events はドメインイベントの配送先。
	events *event.Dispatcher
	// logger はHTTP層のロガー。
	logger *zap.Logger
}

// NewServer は新しいサーバーを生成する。
// eventsがnilの場合はイベントを配送しない。
func NewServer(st *store.Store, events *event.Dispatcher, opts Options, logger *zap.Logger) *Server {
	if events == nil {
		events = event.NewDispatcher(logger)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))

	s := &Server{
		router: router,
		store:  st,
		events: events,
		logger: logger,
	}
	s.setupRoutes(opts)
	return s
}

// Handler はサーバーのhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はaddrでHTTPサーバーを起動し、ctxがキャンセルされると停止する。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTPサーバーを起動します", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	s.logger.Info("HTTPサーバーを停止します")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes(opts Options) {
	if opts.DevTokens {
		// 開発用トークン発行（本番では無効）
		s.router.POST("/auth/dev-token", s.handleDevToken(opts.JWTSecret))
	}

	api := s.router.Group("/api/v1")
	api.Use(middleware.JWTAuth(opts.JWTSecret))
	{
		notifications := api.Group("/notifications")
		{
			// 通知一覧取得（新しい順）
			notifications.GET("", s.handleList())
			// 未読通知一覧取得
			notifications.GET("/unread", s.handleListUnread())
			// 全通知を既読にする
			notifications.PUT("/read-all", s.handleMarkAllAsRead())
			// 通知を既読にする
			notifications.PUT("/:id/read", s.handleMarkAsRead())
			// 通知を削除する
			notifications.DELETE("/:id", s.handleDelete())
		}

		reminders := api.Group("/reminders")
		{
			// 車両のリマインダー一覧取得
			reminders.GET("", s.handleListReminders())
			// リマインダー登録
			reminders.POST("", s.handleCreateReminder())
			// リマインダーを完了にする
			reminders.PUT("/:id/complete", s.handleCompleteReminder())
			// リマインダー削除
			reminders.DELETE("/:id", s.handleDeleteReminder())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", s.handleHealth())
}

// handleHealth はデータベースへの疎通を含めたヘルスチェックを返すハンドラ。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			s.logger.Error("ヘルスチェックでデータベースに接続できません", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": "makina-api"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "makina-api"})
	}
}

// devTokenRequest は開発用トークン発行リクエストのJSON構造。
type devTokenRequest struct {
	// UserID はトークンに埋め込むユーザーID。省略時は採番する。
	UserID string `json:"user_id"`
	// Email はトークンに埋め込むメールアドレス。
	Email string `json:"email"`
}

// handleDevToken は開発用JWTトークンを発行するハンドラを返す。
// ユーザーを登録し、スイープのメール宛先として解決できるようにする。
func (s *Server) handleDevToken(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req devTokenRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
				return
			}
		}
		if req.UserID == "" {
			req.UserID = uuid.New().String()
		}
		if req.Email == "" {
			req.Email = "dev@localhost"
		}

		if err := s.store.UpsertUser(c.Request.Context(), req.UserID, req.Email); err != nil {
			s.logger.Error("開発ユーザーの保存に失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザー作成に失敗しました"})
			return
		}

		token, err := middleware.GenerateJWT(jwtSecret, req.UserID, req.Email)
		if err != nil {
			s.logger.Error("JWTの生成に失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークン生成に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":   token,
			"user_id": req.UserID,
		})
	}
}

// publish はドメインイベントを生成して配送する。
// イベントの生成に失敗しても操作自体は成功として扱う。
func (s *Server) publish(c *gin.Context, aggregateID string, aggregateType event.AggregateType, eventType event.Type, data any) {
	e, err := event.New(aggregateID, aggregateType, eventType, data)
	if err != nil {
		s.logger.Warn("イベントの生成に失敗しました",
			zap.String("event_type", string(eventType)),
			zap.Error(err),
		)
		return
	}
	s.events.Publish(c.Request.Context(), e)
}

// respondStoreError はストアのエラーをHTTPレスポンスに変換する。
// 他ユーザーのデータは存在しないものとして404を返す。
func (s *Server) respondStoreError(c *gin.Context, err error, notFound, failed string) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return
	}
	s.logger.Error(failed, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": failed})
}
