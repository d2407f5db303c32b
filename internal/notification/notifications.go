package notification

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kejsan/makina-ime/internal/model"
	"github.com/Kejsan/makina-ime/pkg/event"
	"github.com/Kejsan/makina-ime/pkg/middleware"
)

// 通知一覧の件数。
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// notificationResponse は通知のJSONレスポンス構造。
type notificationResponse struct {
	// ID は通知の一意識別子。
	ID string `json:"id"`
	// UserID は通知先のユーザーID。
	UserID string `json:"user_id"`
	// Title は通知のタイトル。
	Title string `json:"title"`
	// Body は通知本文。
	Body string `json:"body"`
	// Type は元になったリマインダーの種別。
	Type string `json:"type"`
	// ReminderID は元になったリマインダーのID。
	ReminderID string `json:"reminder_id"`
	// IsRead は通知の既読状態。
	IsRead bool `json:"is_read"`
	// CreatedAt は通知の作成日時（RFC3339形式）。
	CreatedAt string `json:"created_at"`
}

// toNotificationResponses は通知のスライスをJSONレスポンスのスライスに変換する。
func toNotificationResponses(notifications []model.Notification) []notificationResponse {
	responses := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, notificationResponse{
			ID:         n.ID,
			UserID:     n.UserID,
			Title:      n.Title,
			Body:       n.Body,
			Type:       string(n.Category),
			ReminderID: n.ReminderID,
			IsRead:     n.Read,
			CreatedAt:  n.CreatedAt.Format(time.RFC3339),
		})
	}
	return responses
}

// parseLimit はクエリパラメータlimitを解釈する。未指定の場合は既定値を返す。
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxListLimit {
		return 0, false
	}
	return limit, true
}

// handleList は認証済みユーザーの通知を新しい順に返すハンドラ。
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		limit, ok := parseLimit(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limitは1から100の整数で指定してください"})
			return
		}

		notifications, err := s.store.ListNotifications(c.Request.Context(), userID, limit)
		if err != nil {
			s.logger.Error("通知一覧の取得に失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知一覧の取得に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, toNotificationResponses(notifications))
	}
}

// handleListUnread は認証済みユーザーの未読通知を新しい順に返すハンドラ。
func (s *Server) handleListUnread() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		limit, ok := parseLimit(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limitは1から100の整数で指定してください"})
			return
		}

		notifications, err := s.store.ListUnreadNotifications(c.Request.Context(), userID, limit)
		if err != nil {
			s.logger.Error("未読通知一覧の取得に失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "未読通知一覧の取得に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, toNotificationResponses(notifications))
	}
}

// handleMarkAsRead は指定された通知を既読にするハンドラ。
func (s *Server) handleMarkAsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		notificationID := c.Param("id")
		if err := s.store.MarkNotificationRead(c.Request.Context(), userID, notificationID); err != nil {
			s.respondStoreError(c, err, "通知が見つかりません", "通知の既読処理に失敗しました")
			return
		}

		s.publish(c, notificationID, event.AggregateTypeNotification, event.TypeNotificationsRead,
			event.NotificationsReadData{UserID: userID, Count: 1})
		c.JSON(http.StatusOK, gin.H{"message": "通知を既読にしました"})
	}
}

// handleMarkAllAsRead は認証済みユーザーの未読通知をすべて既読にするハンドラ。
func (s *Server) handleMarkAllAsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		count, err := s.store.MarkAllNotificationsRead(c.Request.Context(), userID)
		if err != nil {
			s.logger.Error("全通知の既読処理に失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "全通知の既読処理に失敗しました"})
			return
		}

		if count > 0 {
			s.publish(c, userID, event.AggregateTypeNotification, event.TypeNotificationsRead,
				event.NotificationsReadData{UserID: userID, Count: count})
		}
		c.JSON(http.StatusOK, gin.H{"message": "全通知を既読にしました", "count": count})
	}
}

// handleDelete は指定された通知を削除するハンドラ。
func (s *Server) handleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		if err := s.store.DeleteNotification(c.Request.Context(), userID, c.Param("id")); err != nil {
			s.respondStoreError(c, err, "通知が見つかりません", "通知の削除に失敗しました")
			return
		}

		c.Status(http.StatusNoContent)
	}
}
