package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger はLoggerミドルウェアのログレベル振り分けを検証する。
func TestLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		wantLevel zapcore.Level
	}{
		{name: "2xxはInfoで出力されること", status: http.StatusOK, wantLevel: zapcore.InfoLevel},
		{name: "4xxはWarnで出力されること", status: http.StatusNotFound, wantLevel: zapcore.WarnLevel},
		{name: "5xxはErrorで出力されること", status: http.StatusInternalServerError, wantLevel: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.DebugLevel)
			router := gin.New()
			router.Use(Logger(zap.New(core)))
			router.GET("/api/v1/notifications/:id", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/n-1", nil))

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("ログ件数 = %d, want 1", len(entries))
			}
			if entries[0].Level != tt.wantLevel {
				t.Errorf("Level = %v, want %v", entries[0].Level, tt.wantLevel)
			}
			fields := entries[0].ContextMap()
			if fields["path"] != "/api/v1/notifications/:id" {
				t.Errorf("path = %v, want ルートパターン", fields["path"])
			}
			if fields["status"] != int64(tt.status) {
				t.Errorf("status = %v, want %d", fields["status"], tt.status)
			}
		})
	}

	t.Run("認証済みリクエストではuser_idが出力されること", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(Logger(zap.New(core)))
		router.GET("/me", func(c *gin.Context) {
			c.Set("user_id", "user-log")
			c.Status(http.StatusOK)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/me", nil))

		if got := logs.All()[0].ContextMap()["user_id"]; got != "user-log" {
			t.Errorf("user_id = %v, want %q", got, "user-log")
		}
	})
}
