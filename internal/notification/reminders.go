package notification

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kejsan/makina-ime/internal/model"
	"github.com/Kejsan/makina-ime/pkg/event"
	"github.com/Kejsan/makina-ime/pkg/middleware"
)

// createReminderRequest はリマインダー登録リクエストのJSON構造。
type createReminderRequest struct {
	// VehicleID は対象車両のID。
	VehicleID string `json:"vehicle_id" binding:"required"`
	// Title はリマインダーの件名。
	Title string `json:"title" binding:"required"`
	// Type はリマインダーの種別。
	Type model.Category `json:"type" binding:"required"`
	// DueDate は期日（YYYY-MM-DD）。
	DueDate *model.Date `json:"due_date" binding:"required"`
	// LeadTimeDays は期日の何日前から通知するか。省略時は7。
	LeadTimeDays *int `json:"lead_time_days"`
	// Recurrence は繰り返し設定。省略時はnone。
	Recurrence model.Recurrence `json:"recurrence"`
}

// reminderResponse はリマインダーのJSONレスポンス構造。
type reminderResponse struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	VehicleID    string      `json:"vehicle_id"`
	Title        string      `json:"title"`
	Type         string      `json:"type"`
	DueDate      *model.Date `json:"due_date"`
	LeadTimeDays int         `json:"lead_time_days"`
	Recurrence   string      `json:"recurrence"`
	Completed    bool        `json:"completed"`
	CreatedAt    string      `json:"created_at"`
}

// toReminderResponse はリマインダーをJSONレスポンスに変換する。
func toReminderResponse(r model.Reminder) reminderResponse {
	return reminderResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		VehicleID:    r.VehicleID,
		Title:        r.Title,
		Type:         string(r.Category),
		DueDate:      r.DueDate,
		LeadTimeDays: r.LeadTime(),
		Recurrence:   string(r.Recurrence),
		Completed:    r.Completed,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
}

// handleCreateReminder はリマインダーを登録し、ReminderCreatedイベントを発行するハンドラ。
// 呼び出し元のJWTにメールアドレスがあれば、スイープのメール宛先としてユーザーに保存する。
func (s *Server) handleCreateReminder() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		var req createReminderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		leadTime := model.ResolveLeadTime(req.LeadTimeDays)
		r := model.Reminder{
			UserID:       userID,
			VehicleID:    req.VehicleID,
			Title:        req.Title,
			Category:     req.Type,
			DueDate:      req.DueDate,
			LeadTimeDays: &leadTime,
			Recurrence:   req.Recurrence,
		}
		if r.Recurrence == "" {
			r.Recurrence = model.RecurrenceNone
		}
		if err := r.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		ctx := c.Request.Context()
		if err := s.store.UpsertUser(ctx, userID, middleware.GetEmail(c)); err != nil {
			s.logger.Error("ユーザーの保存に失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "リマインダーの登録に失敗しました"})
			return
		}
		if err := s.store.CreateReminder(ctx, &r); err != nil {
			s.logger.Error("リマインダーの登録に失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "リマインダーの登録に失敗しました"})
			return
		}

		s.publish(c, r.ID, event.AggregateTypeReminder, event.TypeReminderCreated, event.ReminderCreatedData{
			UserID:    r.UserID,
			VehicleID: r.VehicleID,
			Title:     r.Title,
			Category:  string(r.Category),
			DueDate:   r.DueDate.String(),
		})

		c.JSON(http.StatusCreated, toReminderResponse(r))
	}
}

// handleListReminders は指定車両の未完了リマインダーを期日の近い順に返すハンドラ。
func (s *Server) handleListReminders() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		vehicleID := c.Query("vehicle_id")
		if vehicleID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vehicle_idが必要です"})
			return
		}

		reminders, err := s.store.ListRemindersByVehicle(c.Request.Context(), userID, vehicleID)
		if err != nil {
			s.logger.Error("リマインダー一覧の取得に失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "リマインダー一覧の取得に失敗しました"})
			return
		}

		responses := make([]reminderResponse, 0, len(reminders))
		for _, r := range reminders {
			responses = append(responses, toReminderResponse(r))
		}
		c.JSON(http.StatusOK, responses)
	}
}

// handleCompleteReminder は指定されたリマインダーを完了にするハンドラ。
func (s *Server) handleCompleteReminder() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		reminderID := c.Param("id")
		if err := s.store.CompleteReminder(c.Request.Context(), userID, reminderID); err != nil {
			s.respondStoreError(c, err, "リマインダーが見つかりません", "リマインダーの完了処理に失敗しました")
			return
		}

		s.publish(c, reminderID, event.AggregateTypeReminder, event.TypeReminderCompleted,
			event.ReminderChangedData{UserID: userID})
		c.JSON(http.StatusOK, gin.H{"message": "リマインダーを完了にしました"})
	}
}

// handleDeleteReminder は指定されたリマインダーを削除するハンドラ。
func (s *Server) handleDeleteReminder() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		reminderID := c.Param("id")
		if err := s.store.DeleteReminder(c.Request.Context(), userID, reminderID); err != nil {
			s.respondStoreError(c, err, "リマインダーが見つかりません", "リマインダーの削除に失敗しました")
			return
		}

		s.publish(c, reminderID, event.AggregateTypeReminder, event.TypeReminderDeleted,
			event.ReminderChangedData{UserID: userID})
		c.Status(http.StatusNoContent)
	}
}

// LogReminderCreated はリマインダー作成のトリガーとしてイベントをログに出力する購読者を返す。
func LogReminderCreated(logger *zap.Logger) event.Handler {
	return func(_ context.Context, e *event.Event) error {
		data, err := event.DecodeData[event.ReminderCreatedData](e)
		if err != nil {
			return err
		}
		logger.Info("新しいリマインダーが作成されました",
			zap.String("reminder_id", e.AggregateID),
			zap.String("title", data.Title),
			zap.String("user_id", data.UserID),
			zap.String("due_date", data.DueDate),
		)
		return nil
	}
}
