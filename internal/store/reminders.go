package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kejsan/makina-ime/internal/model"
)

// reminderRow はremindersテーブルの1行。
type reminderRow struct {
	ID           string         `db:"id"`
	UserID       sql.NullString `db:"user_id"`
	VehicleID    string         `db:"vehicle_id"`
	Title        string         `db:"title"`
	Category     string         `db:"type"`
	DueDate      sql.NullString `db:"due_date"`
	LeadTimeDays sql.NullInt64  `db:"lead_time_days"`
	Recurrence   string         `db:"recurrence"`
	Completed    bool           `db:"completed"`
	CreatedAt    time.Time      `db:"created_at"`
}

const reminderColumns = `id, user_id, vehicle_id, title, type, due_date, lead_time_days, recurrence, completed, created_at`

// toModel は行をドメインモデルに変換する。解釈できない期日は欠落として扱う。
func (r reminderRow) toModel(logger *zap.Logger) model.Reminder {
	m := model.Reminder{
		ID:         r.ID,
		UserID:     r.UserID.String,
		VehicleID:  r.VehicleID,
		Title:      r.Title,
		Category:   model.Category(r.Category),
		Recurrence: model.Recurrence(r.Recurrence),
		Completed:  r.Completed,
		CreatedAt:  r.CreatedAt,
	}
	if r.DueDate.Valid && r.DueDate.String != "" {
		d, err := model.ParseDate(r.DueDate.String)
		if err != nil {
			logger.Debug("期日を解釈できないため欠落として扱います",
				zap.String("reminder_id", r.ID),
				zap.String("due_date", r.DueDate.String),
			)
		} else {
			m.DueDate = &d
		}
	}
	if r.LeadTimeDays.Valid {
		v := int(r.LeadTimeDays.Int64)
		m.LeadTimeDays = &v
	}
	return m
}

// ListIncompleteReminders は期日がfrom以降、または期日なしの未完了リマインダーを
// 期日の昇順（期日なしは末尾）で最大limit件返す。
// 期限切れのリマインダーは読み込み上限を消費しない。
func (s *Store) ListIncompleteReminders(ctx context.Context, from model.Date, limit int) ([]model.Reminder, error) {
	query := s.db.Rebind(`SELECT ` + reminderColumns + ` FROM reminders
		WHERE completed = ? AND (due_date IS NULL OR due_date >= ?)
		ORDER BY due_date IS NULL, due_date, id
		LIMIT ?`)

	var rows []reminderRow
	if err := s.db.SelectContext(ctx, &rows, query, false, from.String(), limit); err != nil {
		return nil, fmt.Errorf("未完了リマインダーの取得に失敗: %w", err)
	}
	return s.toReminders(rows), nil
}

// ListRemindersByVehicle はユーザーの指定車両の未完了リマインダーを期日の昇順で返す。
func (s *Store) ListRemindersByVehicle(ctx context.Context, userID, vehicleID string) ([]model.Reminder, error) {
	query := s.db.Rebind(`SELECT ` + reminderColumns + ` FROM reminders
		WHERE user_id = ? AND vehicle_id = ? AND completed = ?
		ORDER BY due_date IS NULL, due_date, id`)

	var rows []reminderRow
	if err := s.db.SelectContext(ctx, &rows, query, userID, vehicleID, false); err != nil {
		return nil, fmt.Errorf("車両のリマインダー取得に失敗: %w", err)
	}
	return s.toReminders(rows), nil
}

func (s *Store) toReminders(rows []reminderRow) []model.Reminder {
	reminders := make([]model.Reminder, 0, len(rows))
	for _, r := range rows {
		reminders = append(reminders, r.toModel(s.logger))
	}
	return reminders
}

// CreateReminder はリマインダーを登録する。
// IDと作成日時はストアが採番し、引数のrに書き戻す。
func (s *Store) CreateReminder(ctx context.Context, r *model.Reminder) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.CreatedAt = s.timestamp()

	var dueDate sql.NullString
	if r.DueDate != nil {
		dueDate = sql.NullString{String: r.DueDate.String(), Valid: true}
	}
	var leadTime sql.NullInt64
	if r.LeadTimeDays != nil {
		leadTime = sql.NullInt64{Int64: int64(*r.LeadTimeDays), Valid: true}
	}
	var userID sql.NullString
	if r.UserID != "" {
		userID = sql.NullString{String: r.UserID, Valid: true}
	}

	query := s.db.Rebind(`INSERT INTO reminders (` + reminderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		r.ID, userID, r.VehicleID, r.Title, string(r.Category),
		dueDate, leadTime, string(r.Recurrence), r.Completed, r.CreatedAt,
	); err != nil {
		return fmt.Errorf("リマインダーの登録に失敗: %w", err)
	}
	return nil
}

// CompleteReminder はユーザーのリマインダーを完了にする。
// 完了したリマインダーはそれ以降スイープの対象にならない。
func (s *Store) CompleteReminder(ctx context.Context, userID, id string) error {
	query := s.db.Rebind(`UPDATE reminders SET completed = ? WHERE id = ? AND user_id = ?`)
	res, err := s.db.ExecContext(ctx, query, true, id, userID)
	if err != nil {
		return fmt.Errorf("リマインダーの完了処理に失敗: %w", err)
	}
	return rowsAffected(res)
}

// DeleteReminder はユーザーのリマインダーを削除する。
func (s *Store) DeleteReminder(ctx context.Context, userID, id string) error {
	query := s.db.Rebind(`DELETE FROM reminders WHERE id = ? AND user_id = ?`)
	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("リマインダーの削除に失敗: %w", err)
	}
	return rowsAffected(res)
}
