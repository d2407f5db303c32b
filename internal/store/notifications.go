package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Kejsan/makina-ime/internal/model"
)

// notificationRow はnotificationsテーブルの1行。
type notificationRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Title      string    `db:"title"`
	Body       string    `db:"body"`
	Category   string    `db:"type"`
	ReminderID string    `db:"reminder_id"`
	IsRead     bool      `db:"is_read"`
	CreatedAt  time.Time `db:"created_at"`
}

const notificationColumns = `id, user_id, title, body, type, reminder_id, is_read, created_at`

func (r notificationRow) toModel() model.Notification {
	return model.Notification{
		ID:         r.ID,
		UserID:     r.UserID,
		Title:      r.Title,
		Body:       r.Body,
		Category:   model.Category(r.Category),
		ReminderID: r.ReminderID,
		Read:       r.IsRead,
		CreatedAt:  r.CreatedAt,
	}
}

func toNotifications(rows []notificationRow) []model.Notification {
	out := make([]model.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out
}

// CreateNotifications は通知をまとめて1トランザクションで保存する。
// いずれかの挿入に失敗した場合は1件も保存されない。
// IDが空の要素にはUUIDを採番し、作成日時とともにnsへ書き戻す。
func (s *Store) CreateNotifications(ctx context.Context, ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	createdAt := s.timestamp()
	query := tx.Rebind(`INSERT INTO notifications (` + notificationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("通知挿入文の準備に失敗: %w", err)
	}
	defer stmt.Close()

	for i := range ns {
		n := &ns[i]
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		n.CreatedAt = createdAt
		if _, err := stmt.ExecContext(ctx,
			n.ID, n.UserID, n.Title, n.Body, string(n.Category), n.ReminderID, n.Read, n.CreatedAt,
		); err != nil {
			return fmt.Errorf("通知 %s の挿入に失敗: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("通知のコミットに失敗: %w", err)
	}
	return nil
}

// ListNotifications はユーザーの通知を新しい順に最大limit件返す。
func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	query := s.db.Rebind(`SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗: %w", err)
	}
	return toNotifications(rows), nil
}

// ListUnreadNotifications はユーザーの未読通知を新しい順に最大limit件返す。
func (s *Store) ListUnreadNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	query := s.db.Rebind(`SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = ? AND is_read = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, query, userID, false, limit); err != nil {
		return nil, fmt.Errorf("未読通知一覧の取得に失敗: %w", err)
	}
	return toNotifications(rows), nil
}

// MarkNotificationRead はユーザーの通知を既読にする。
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	query := s.db.Rebind(`UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`)
	res, err := s.db.ExecContext(ctx, query, true, id, userID)
	if err != nil {
		return fmt.Errorf("通知の既読処理に失敗: %w", err)
	}
	return rowsAffected(res)
}

// MarkAllNotificationsRead はユーザーの未読通知をすべて1トランザクションで既読にし、件数を返す。
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var ids []string
	if err := tx.SelectContext(ctx, &ids,
		tx.Rebind(`SELECT id FROM notifications WHERE user_id = ? AND is_read = ?`),
		userID, false,
	); err != nil {
		return 0, fmt.Errorf("未読通知の取得に失敗: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`UPDATE notifications SET is_read = ? WHERE user_id = ? AND id IN (?)`, true, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("既読更新クエリの組み立てに失敗: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("全通知の既読処理に失敗: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("全通知の既読処理のコミットに失敗: %w", err)
	}
	return int64(len(ids)), nil
}

// DeleteNotification はユーザーの通知を削除する。
func (s *Store) DeleteNotification(ctx context.Context, userID, id string) error {
	query := s.db.Rebind(`DELETE FROM notifications WHERE id = ? AND user_id = ?`)
	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("通知の削除に失敗: %w", err)
	}
	return rowsAffected(res)
}
