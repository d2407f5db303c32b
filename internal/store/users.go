package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LookupEmail はユーザーのメールアドレスを返す。
// ユーザーが存在しない場合はErrNotFound、アドレス未登録の場合は空文字列を返す。
func (s *Store) LookupEmail(ctx context.Context, userID string) (string, error) {
	var email sql.NullString
	query := s.db.Rebind(`SELECT email FROM users WHERE id = ?`)
	if err := s.db.GetContext(ctx, &email, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return email.String, nil
}

// UpsertUser はユーザープロファイルを登録し、既存の場合はメールアドレスを更新する。
// emailが空の場合は既存のアドレスを上書きしない。
func (s *Store) UpsertUser(ctx context.Context, userID, email string) error {
	var value sql.NullString
	if email != "" {
		value = sql.NullString{String: email, Valid: true}
	}

	query := s.db.Rebind(`INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET email = COALESCE(excluded.email, users.email)`)
	if _, err := s.db.ExecContext(ctx, query, userID, value, s.timestamp()); err != nil {
		return fmt.Errorf("ユーザーの登録に失敗: %w", err)
	}
	return nil
}
